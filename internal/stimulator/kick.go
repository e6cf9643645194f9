package stimulator

import "math/rand"

// Kick injects a Poisson spike-train drive into selected neurons of a sheet.
// The drive holds at FiringRate*Weight for DrivePeriod ms and then ramps
// linearly to zero by the end of the presentation.
type Kick struct {
	FiringRate  float64 // mean rate of the injected train (Hz)
	Weight      float64 // spike size
	DrivePeriod float64 // ms of constant drive before the ramp-down
	Selector    PopulationSelector
	Pol         Polarity
	rng         *rand.Rand
}

func NewKick(firingRate, weight, drivePeriod float64, selector PopulationSelector, pol Polarity, seed int64) *Kick {
	return &Kick{
		FiringRate:  firingRate,
		Weight:      weight,
		DrivePeriod: drivePeriod,
		Selector:    selector,
		Pol:         pol,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (k *Kick) Polarity() Polarity { return k.Pol }

func (k *Kick) Targets(ids []int) []int {
	if k.Selector == nil {
		return ids
	}
	return k.Selector.Select(ids)
}

func (k *Kick) Drive(start, duration, dt float64) []float64 {
	steps := int(duration / dt)
	drive := make([]float64, steps)

	// expected spikes per step at the nominal rate
	lambda := k.FiringRate * dt / 1000.0

	for i := range drive {
		t := float64(i) * dt
		scale := 1.0
		if t > k.DrivePeriod && duration > k.DrivePeriod {
			scale = 1.0 - (t-k.DrivePeriod)/(duration-k.DrivePeriod)
		}
		if k.rng.Float64() < lambda*scale {
			drive[i] = k.Weight
		}
	}
	return drive
}
