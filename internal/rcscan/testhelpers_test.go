package rcscan

// synth builds an exact-timing pulse train for value encoded MSB-first in
// nbits symbols of p, optionally preceded by the protocol's sync pair.
func synth(p Protocol, value uint64, nbits int, withSync bool) []Pulse {
	active := p.ActiveLevel()
	idle := High
	if active == High {
		idle = Low
	}
	pair := func(r Ratio) []Pulse {
		return []Pulse{
			{Duration: uint16(r.High) * p.PulseUs, Level: active},
			{Duration: uint16(r.Low) * p.PulseUs, Level: idle},
		}
	}

	var out []Pulse
	if withSync {
		out = append(out, pair(p.Sync)...)
	}
	for i := nbits - 1; i >= 0; i-- {
		if value>>uint(i)&1 == 1 {
			out = append(out, pair(p.One)...)
		} else {
			out = append(out, pair(p.Zero)...)
		}
	}
	return out
}

// protocol1Train is a sync pair, four zeros and four ones for protocol 1.
func protocol1Train() []Pulse {
	pulses := []Pulse{{350, High}, {10850, Low}}
	for i := 0; i < 4; i++ {
		pulses = append(pulses, Pulse{350, High}, Pulse{1050, Low})
	}
	for i := 0; i < 4; i++ {
		pulses = append(pulses, Pulse{1050, High}, Pulse{350, Low})
	}
	return pulses
}
