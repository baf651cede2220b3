package rcscan

import "fmt"

// Family identifies how a protocol encodes its symbols.
type Family uint8

// FamilyPWM encodes each bit as a high/low pair whose ratio selects the value.
const FamilyPWM Family = 1

// Ratio is a high:low pair expressed in multiples of a protocol's base unit.
type Ratio struct {
	High uint8
	Low  uint8
}

// Protocol describes one PWM remote-control protocol.
type Protocol struct {
	ID        uint8
	Family    Family
	Tolerance uint8  // percent
	PulseUs   uint16 // base unit
	Sync      Ratio
	Zero      Ratio
	One       Ratio
	// Inverted makes logic-low the active level.
	Inverted bool
	// AddLastPulse keeps a trailing zero-length pulse in the bit stream.
	AddLastPulse bool
}

func (p Protocol) String() string {
	return fmt.Sprintf("protocol %d (%dus, tol %d%%)", p.ID, p.PulseUs, p.Tolerance)
}

// ActiveLevel returns the level the first half of every symbol is sent at.
func (p Protocol) ActiveLevel() Level {
	if p.Inverted {
		return Low
	}
	return High
}

// Registry is an ordered protocol catalog. Earlier entries take priority.
type Registry []Protocol

// Lookup returns the protocol with the given id.
func (r Registry) Lookup(id uint8) (Protocol, bool) {
	for _, p := range r {
		if p.ID == id {
			return p, true
		}
	}
	return Protocol{}, false
}

var defaultProtocols = [...]Protocol{
	{ID: 1, Family: FamilyPWM, Tolerance: 25, PulseUs: 350, Sync: Ratio{1, 31}, Zero: Ratio{1, 3}, One: Ratio{3, 1}},
	{ID: 2, Family: FamilyPWM, Tolerance: 25, PulseUs: 650, Sync: Ratio{1, 10}, Zero: Ratio{1, 2}, One: Ratio{2, 1}},
	{ID: 3, Family: FamilyPWM, Tolerance: 25, PulseUs: 100, Sync: Ratio{30, 71}, Zero: Ratio{4, 11}, One: Ratio{9, 6}},
	{ID: 4, Family: FamilyPWM, Tolerance: 25, PulseUs: 380, Sync: Ratio{2, 6}, Zero: Ratio{1, 3}, One: Ratio{3, 1}},
	{ID: 5, Family: FamilyPWM, Tolerance: 25, PulseUs: 500, Sync: Ratio{6, 14}, Zero: Ratio{1, 2}, One: Ratio{2, 1}},
	// HT6P20B
	{ID: 6, Family: FamilyPWM, Tolerance: 25, PulseUs: 450, Sync: Ratio{23, 1}, Zero: Ratio{1, 2}, One: Ratio{2, 1}, Inverted: true},
	// HS2303-PT (AUKEY remotes)
	{ID: 7, Family: FamilyPWM, Tolerance: 25, PulseUs: 150, Sync: Ratio{2, 62}, Zero: Ratio{1, 6}, One: Ratio{6, 1}},
	// Conrad RS-200 RX
	{ID: 8, Family: FamilyPWM, Tolerance: 25, PulseUs: 200, Sync: Ratio{3, 130}, Zero: Ratio{7, 16}, One: Ratio{3, 16}},
	// Conrad RS-200 TX
	{ID: 9, Family: FamilyPWM, Tolerance: 25, PulseUs: 200, Sync: Ratio{130, 7}, Zero: Ratio{16, 7}, One: Ratio{16, 3}, Inverted: true},
	// 1ByOne doorbell
	{ID: 10, Family: FamilyPWM, Tolerance: 25, PulseUs: 365, Sync: Ratio{18, 1}, Zero: Ratio{3, 1}, One: Ratio{1, 3}, Inverted: true},
	// HT12E
	{ID: 11, Family: FamilyPWM, Tolerance: 25, PulseUs: 270, Sync: Ratio{36, 1}, Zero: Ratio{1, 2}, One: Ratio{2, 1}, Inverted: true},
	// SM5212
	{ID: 12, Family: FamilyPWM, Tolerance: 25, PulseUs: 320, Sync: Ratio{36, 1}, Zero: Ratio{1, 2}, One: Ratio{2, 1}, Inverted: true},
	// Prologue outdoor weather sensor (temperature + humidity)
	{ID: 101, Family: FamilyPWM, Tolerance: 25, PulseUs: 500, Sync: Ratio{1, 18}, Zero: Ratio{1, 4}, One: Ratio{1, 8}},
	// cesspit / soil sensor transmitter
	{ID: 102, Family: FamilyPWM, Tolerance: 40, PulseUs: 333, Sync: Ratio{1, 8}, Zero: Ratio{1, 2}, One: Ratio{2, 1}},
	// WH2 outdoor weather sensor (temperature + humidity)
	{ID: 103, Family: FamilyPWM, Tolerance: 30, PulseUs: 500, Sync: Ratio{1, 18}, Zero: Ratio{3, 2}, One: Ratio{1, 2}, AddLastPulse: true},
}

// Protocols returns a copy of the built-in protocol catalog in priority order.
func Protocols() Registry {
	r := make(Registry, len(defaultProtocols))
	copy(r, defaultProtocols[:])
	return r
}
