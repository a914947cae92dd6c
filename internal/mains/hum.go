package mains

import (
	"math"
)

// DefaultHarmonics is the number of mains harmonics measured by HumRatio.
const DefaultHarmonics = 4

// ToneAmplitude returns the amplitude of the freq component of samples using
// the Goertzel algorithm. Returns 0 for empty input or freq at/above Nyquist.
func ToneAmplitude(samples []float32, sampleRate, freq float64) float64 {
	n := len(samples)
	if n == 0 || sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return 0
	}

	coeff := 2 * math.Cos(2*math.Pi*freq/sampleRate)
	var s1, s2 float64
	for _, x := range samples {
		s0 := float64(x) + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return 2 * math.Sqrt(power) / float64(n)
}

// HumRatio returns the RMS of the mains fundamental and its first
// harmonics relative to the RMS of the whole signal, in [0, 1].
// A silent or empty signal returns 0.
func HumRatio(samples []float32, sampleRate float64, mainsHz, harmonics int) float64 {
	if len(samples) == 0 || mainsHz <= 0 {
		return 0
	}
	if harmonics < 1 {
		harmonics = 1
	}

	var total float64
	for _, x := range samples {
		total += float64(x) * float64(x)
	}
	total /= float64(len(samples))
	if total == 0 {
		return 0
	}

	var hum float64
	for h := 1; h <= harmonics; h++ {
		a := ToneAmplitude(samples, sampleRate, float64(h*mainsHz))
		hum += a * a / 2
	}

	return min(1, math.Sqrt(hum/total))
}
