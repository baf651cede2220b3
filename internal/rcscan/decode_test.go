package rcscan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProtocol1Scenario(t *testing.T) {
	res, ok := Decode(protocol1Train())
	require.True(t, ok)
	require.NotNil(t, res.Protocol)
	assert.Equal(t, uint8(1), res.Protocol.ID)
	assert.Equal(t, 8, res.Bits)
	assert.Equal(t, uint64(0b00001111), res.Value)
}

func TestDecodeTooShort(t *testing.T) {
	pulses := protocol1Train()[:10]

	res, ok := Decode(pulses)
	assert.False(t, ok)
	assert.Nil(t, res.Protocol)
	assert.Zero(t, res.Bits)
	assert.Zero(t, res.Value)
}

func TestDecodeEmpty(t *testing.T) {
	_, ok := Decode(nil)
	assert.False(t, ok)
}

func TestDecodeMinPulsesConfigurable(t *testing.T) {
	d := NewDecoder(Protocols())
	d.MinPulses = 20

	_, ok := d.Decode(protocol1Train())
	assert.False(t, ok, "18 pulses is below a floor of 20")

	d.MinPulses = 18
	_, ok = d.Decode(protocol1Train())
	assert.True(t, ok)
}

func TestDecodeNoMatch(t *testing.T) {
	pulses := make([]Pulse, 32)
	for i := range pulses {
		pulses[i] = Pulse{Duration: 7777, Level: Level(1 - i%2)}
	}

	res, ok := Decode(pulses)
	assert.False(t, ok)
	assert.Equal(t, Result{}, res)
}

func TestDecodeExtraLeadingEdge(t *testing.T) {
	pulses := append([]Pulse{{Duration: 350, Level: Low}}, protocol1Train()...)

	res, ok := Decode(pulses)
	require.True(t, ok)
	assert.Equal(t, uint8(1), res.Protocol.ID)
	assert.Equal(t, 8, res.Bits)
	assert.Equal(t, uint64(15), res.Value)
}

// Every protocol decodes its own exact-timing trains when it is the only
// candidate.
func TestDecodeRoundTripEachProtocol(t *testing.T) {
	patterns := []struct {
		value uint64
		bits  int
	}{
		{0xA5C3, 16},
		{0x5A5A5A, 24},
		{0x1, 12},
		{0xFFF0, 16},
		{0xDEADBEEFCAFEF00D, 64},
	}

	for _, p := range Protocols() {
		d := NewDecoder(Registry{p})
		for _, pat := range patterns {
			t.Run(fmt.Sprintf("p%d/%x", p.ID, pat.value), func(t *testing.T) {
				res, ok := d.Decode(synth(p, pat.value, pat.bits, true))
				require.True(t, ok)
				assert.Equal(t, p.ID, res.Protocol.ID)
				assert.Equal(t, pat.bits, res.Bits)
				assert.Equal(t, pat.value, res.Value)
			})
		}
	}
}

// Earlier registry entries win when their timing also fits the train.
func TestDecodeRegistryPriority(t *testing.T) {
	reg := Protocols()
	p11, ok := reg.Lookup(11)
	require.True(t, ok)
	p12, ok := reg.Lookup(12)
	require.True(t, ok)

	res, ok := Decode(synth(p12, 0xA5C3, 16, true))
	require.True(t, ok)
	assert.Equal(t, uint8(11), res.Protocol.ID)
	assert.Equal(t, uint64(0xA5C3), res.Value)

	// Reversing the order flips the winner.
	d := NewDecoder(Registry{p12, p11})
	res, ok = d.Decode(synth(p12, 0xA5C3, 16, true))
	require.True(t, ok)
	assert.Equal(t, uint8(12), res.Protocol.ID)
}

func TestDecodeWithoutSync(t *testing.T) {
	p, ok := Protocols().Lookup(1)
	require.True(t, ok)

	res, ok := Decode(synth(p, 0xABCDE, 20, false))
	require.True(t, ok)
	assert.Equal(t, uint8(1), res.Protocol.ID)
	assert.Equal(t, 20, res.Bits)
	assert.Equal(t, uint64(0xABCDE), res.Value)
}

func TestDecodeTrailingZeroPulse(t *testing.T) {
	reg := Protocols()
	p1, _ := reg.Lookup(1)
	p103, _ := reg.Lookup(103)

	// Without AddLastPulse the truncated final symbol is dropped.
	pulses := synth(p1, 0xA5C3, 16, true)
	pulses[len(pulses)-1].Duration = 0
	res, ok := NewDecoder(Registry{p1}).Decode(pulses)
	require.True(t, ok)
	assert.Equal(t, 15, res.Bits)
	assert.Equal(t, uint64(0xA5C3>>1), res.Value)

	// With AddLastPulse the final symbol is decoded from its high phase.
	pulses = synth(p103, 0xA5C3, 16, true)
	pulses[len(pulses)-1].Duration = 0
	res, ok = NewDecoder(Registry{p103}).Decode(pulses)
	require.True(t, ok)
	assert.Equal(t, 16, res.Bits)
	assert.Equal(t, uint64(0xA5C3), res.Value)
}

func TestDecodeTolerance(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		delta  int
		decode bool
	}{
		{"one high just under", 12, 261, true},
		{"one high just over", 12, 262, false},
		{"zero low just under", 5, 261, true},
		{"zero low just over", 5, 262, false},
		{"zero low just under below", 5, -261, true},
		{"zero low just over below", 5, -262, false},
		{"widened sync high just under", 0, 174, true},
		{"widened sync high just over", 0, 175, false},
		{"widened first symbol just under", 3, 524, true},
		{"widened first symbol just over", 3, 525, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pulses := protocol1Train()
			pulses[tt.index].Duration = uint16(int(pulses[tt.index].Duration) + tt.delta)

			res, ok := Decode(pulses)
			if !tt.decode {
				assert.False(t, ok && res.Protocol.ID == 1, "protocol 1 should not match")
				return
			}
			require.True(t, ok)
			assert.Equal(t, uint8(1), res.Protocol.ID)
			assert.Equal(t, 8, res.Bits)
			assert.Equal(t, uint64(15), res.Value)
		})
	}
}

func TestDecodeTooManyBits(t *testing.T) {
	p, _ := Protocols().Lookup(1)
	pulses := synth(p, 0, 64, true)
	pulses = append(pulses, synth(p, 1, 1, false)...)

	_, ok := NewDecoder(Registry{p}).Decode(pulses)
	assert.False(t, ok, "65 symbols overflow the accumulator")
}

func TestProtocolsReturnsCopy(t *testing.T) {
	reg := Protocols()
	reg[0].PulseUs = 1

	assert.Equal(t, uint16(350), Protocols()[0].PulseUs)
}

func TestRegistryLookup(t *testing.T) {
	reg := Protocols()
	require.Len(t, reg, 15)

	p, ok := reg.Lookup(103)
	require.True(t, ok)
	assert.True(t, p.AddLastPulse)
	assert.Equal(t, uint8(30), p.Tolerance)

	_, ok = reg.Lookup(42)
	assert.False(t, ok)
}
