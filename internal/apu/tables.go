package apu

// lengthTable maps the 5-bit length-counter load index written to bits 3-7
// of $4003/$4007/$400B/$400F into the number of frame-counter ticks a
// channel stays audible.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

// dutyTable holds the four 8-step duty cycle patterns for the pulse
// channels: 12.5%, 25%, 50%, 75%.
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// triangleTable is the 32-step bipolar triangle wave sequence.
var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// noisePeriodTable is the NTSC noise channel timer period lookup.
var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// pulseMixTable and tndMixTable are the precomputed nonlinear mixer curves
// derived from the NES mixer formulas:
//
//	pulse_out = 95.88 / (8128 / (p1+p2) + 100)
//	tnd_out   = 159.79 / (1 / (t/8227 + n/12241 + d/22638) + 100)
//
// tndMixTable is addressed by the weighted sum 3*triangle + 2*noise + dmc,
// which lets a single 203-entry table, 163.67 / (24329/i + 100), stand in
// for the three-way division. The weights only approximate the
// 8227:12241:22638 ratio, so entries differ from the per-term formula by a
// few percent.
var pulseMixTable [31]float32
var tndMixTable [203]float32

func init() {
	for i := 1; i < len(pulseMixTable); i++ {
		pulseMixTable[i] = float32(95.88 / (8128.0/float64(i) + 100.0))
	}
	for i := 1; i < len(tndMixTable); i++ {
		tndMixTable[i] = float32(163.67 / (24329.0/float64(i) + 100.0))
	}
}
