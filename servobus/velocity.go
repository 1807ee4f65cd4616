package servobus

// VelocityRead derives id's angular velocity, in degrees per second, by
// issuing two back-to-back PosRead calls and differentiating against a
// timestamp taken immediately before each read (the Bus's Clock).
//
// It returns a single-element slice — rather than a bare float64 — so a
// future multi-servo batched estimator can be added without changing this
// method's signature. The estimate is inherently noisy: two PosRead round
// trips bound its resolution to whatever time separates them.
func (b *Bus) VelocityRead(id uint8) ([]float64, error) {
	t1 := b.clock.Now()
	pos1, err := b.PosRead(id)
	if err != nil {
		return nil, err
	}
	t2 := b.clock.Now()
	pos2, err := b.PosRead(id)
	if err != nil {
		return nil, err
	}
	dt := t2.Sub(t1).Seconds()
	if dt <= 0 {
		return []float64{0}, nil
	}
	return []float64{(pos2 - pos1) / dt}, nil
}
