// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// Adam optimizer constants.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

type activation int

const (
	activationReLU activation = iota
	activationSigmoid
)

// denseLayer is a fully connected layer. Weights are row-major: w[i*out+j]
// connects input i to output j.
type denseLayer struct {
	in, out int
	act     activation
	l2      float64

	w, b []float64

	// gradient accumulators and Adam moments
	gw, gb         []float64
	mw, vw, mb, vb []float64
}

func newDenseLayer(in, out int, act activation, l2 float64, rng *rand.Rand) *denseLayer {
	l := &denseLayer{
		in: in, out: out, act: act, l2: l2,
		w:  make([]float64, in*out),
		b:  make([]float64, out),
		gw: make([]float64, in*out),
		gb: make([]float64, out),
		mw: make([]float64, in*out),
		vw: make([]float64, in*out),
		mb: make([]float64, out),
		vb: make([]float64, out),
	}
	// Glorot uniform
	limit := math.Sqrt(6 / float64(in+out))
	for i := range l.w {
		l.w[i] = (rng.Float64()*2 - 1) * limit
	}
	return l
}

func (l *denseLayer) forward(x, y []float64) {
	for j := 0; j < l.out; j++ {
		y[j] = l.b[j]
	}
	for i := 0; i < l.in; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		row := l.w[i*l.out : (i+1)*l.out]
		for j, w := range row {
			y[j] += xi * w
		}
	}
	for j := range y[:l.out] {
		switch l.act {
		case activationReLU:
			if y[j] < 0 {
				y[j] = 0
			}
		case activationSigmoid:
			y[j] = 1 / (1 + math.Exp(-y[j]))
		}
	}
}

// penalty is the L2 term added to the loss.
func (l *denseLayer) penalty() float64 {
	if l.l2 == 0 {
		return 0
	}
	var sum float64
	for _, w := range l.w {
		sum += w * w
	}
	return l.l2 * sum
}

func (l *denseLayer) zeroGrad() {
	clear(l.gw)
	clear(l.gb)
}

func (l *denseLayer) adamStep(lr float64, t int) {
	if l.l2 != 0 {
		for i, w := range l.w {
			l.gw[i] += 2 * l.l2 * w
		}
	}
	step := lr * math.Sqrt(1-math.Pow(adamBeta2, float64(t))) / (1 - math.Pow(adamBeta1, float64(t)))
	adamUpdate(l.w, l.gw, l.mw, l.vw, step)
	adamUpdate(l.b, l.gb, l.mb, l.vb, step)
}

func adamUpdate(params, grads, m, v []float64, step float64) {
	for i, g := range grads {
		m[i] = adamBeta1*m[i] + (1-adamBeta1)*g
		v[i] = adamBeta2*v[i] + (1-adamBeta2)*g*g
		params[i] -= step * m[i] / (math.Sqrt(v[i]) + adamEpsilon)
	}
}

// Autoencoder is a dense network trained to reconstruct its input:
// width -> hidden1 (ReLU, L2) -> hidden2 (ReLU) -> width (sigmoid).
// A trained Autoencoder is read-only and safe for concurrent Predict calls.
type Autoencoder struct {
	width  int
	layers []*denseLayer
	step   int
}

// NewAutoencoder creates a network with Glorot-initialized weights.
func NewAutoencoder(width, hidden1, hidden2 int, l2 float64, rng *rand.Rand) *Autoencoder {
	return &Autoencoder{
		width: width,
		layers: []*denseLayer{
			newDenseLayer(width, hidden1, activationReLU, l2, rng),
			newDenseLayer(hidden1, hidden2, activationReLU, 0, rng),
			newDenseLayer(hidden2, width, activationSigmoid, 0, rng),
		},
	}
}

// Width is the input and output length.
func (a *Autoencoder) Width() int { return a.width }

// Predict reconstructs x through the network.
func (a *Autoencoder) Predict(x []float64) ([]float64, error) {
	if len(x) != a.width {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), a.width)
	}
	acts := a.newActivations()
	a.forward(x, acts)
	return append([]float64(nil), acts[len(acts)-1]...), nil
}

func (a *Autoencoder) newActivations() [][]float64 {
	acts := make([][]float64, len(a.layers)+1)
	for i, l := range a.layers {
		acts[i+1] = make([]float64, l.out)
	}
	return acts
}

func (a *Autoencoder) forward(x []float64, acts [][]float64) {
	acts[0] = x
	for i, l := range a.layers {
		l.forward(acts[i], acts[i+1])
	}
}

// TrainOptions controls a Fit run.
type TrainOptions struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	ValidationSplit float64
	Rng             *rand.Rand

	// OnEpoch is called after every epoch with 1-based epoch numbers.
	OnEpoch func(TrainingProgress)
}

// TrainStats summarizes a completed Fit run.
type TrainStats struct {
	Epochs    int
	Samples   int
	FinalLoss float64
	ValLoss   *float64
}

// Fit trains the network to reconstruct samples using mean squared error
// and Adam. The trailing ValidationSplit fraction is held out and only
// reported. Fit stops early when ctx is done.
func (a *Autoencoder) Fit(ctx context.Context, samples [][]float64, opts TrainOptions) (TrainStats, error) {
	for i, s := range samples {
		if len(s) != a.width {
			return TrainStats{}, fmt.Errorf("%w: sample %d has width %d, want %d", ErrDimensionMismatch, i, len(s), a.width)
		}
	}

	nVal := int(math.Floor(float64(len(samples)) * opts.ValidationSplit))
	if nVal >= len(samples) {
		nVal = 0
	}
	train := samples[:len(samples)-nVal]
	val := samples[len(samples)-nVal:]
	if len(train) == 0 {
		return TrainStats{}, ErrEmptyCatalog
	}

	rng := opts.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) //nolint:gosec // deterministic shuffling
	}
	batchSize := max(opts.BatchSize, 1)

	acts := a.newActivations()
	deltas := make([][]float64, len(a.layers))
	for i, l := range a.layers {
		deltas[i] = make([]float64, l.out)
	}

	stats := TrainStats{Samples: len(train)}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("training interrupted at epoch %d: %w", epoch, err)
		}

		order := rng.Perm(len(train))
		var epochLoss float64
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			batchLoss := a.trainBatch(train, order[start:end], acts, deltas, opts.LearningRate)
			epochLoss += batchLoss * float64(end-start)
		}
		epochLoss /= float64(len(train))
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return stats, fmt.Errorf("%w at epoch %d", ErrNumericInstability, epoch)
		}

		stats.Epochs = epoch
		stats.FinalLoss = epochLoss
		if len(val) > 0 {
			v := a.evaluate(val, acts)
			stats.ValLoss = &v
		}
		if opts.OnEpoch != nil {
			opts.OnEpoch(TrainingProgress{Epoch: epoch, Epochs: opts.Epochs, Loss: epochLoss, ValLoss: stats.ValLoss})
		}
	}
	return stats, nil
}

// trainBatch runs one optimizer step and returns the batch loss including
// the L2 penalty.
func (a *Autoencoder) trainBatch(samples [][]float64, idx []int, acts, deltas [][]float64, lr float64) float64 {
	for _, l := range a.layers {
		l.zeroGrad()
	}

	scale := 2 / float64(a.width*len(idx))
	var loss float64
	last := len(a.layers) - 1
	for _, k := range idx {
		target := samples[k]
		a.forward(target, acts)

		out := acts[last+1]
		for j, y := range out {
			diff := y - target[j]
			loss += diff * diff
			deltas[last][j] = scale * diff * y * (1 - y)
		}

		for li := last; li >= 0; li-- {
			l := a.layers[li]
			in := acts[li]
			d := deltas[li]
			for i := 0; i < l.in; i++ {
				xi := in[i]
				row := l.gw[i*l.out : (i+1)*l.out]
				for j := range row {
					row[j] += xi * d[j]
				}
			}
			for j := range d {
				l.gb[j] += d[j]
			}
			if li == 0 {
				break
			}
			prev := deltas[li-1]
			for i := 0; i < l.in; i++ {
				if in[i] <= 0 {
					prev[i] = 0
					continue
				}
				var sum float64
				row := l.w[i*l.out : (i+1)*l.out]
				for j, w := range row {
					sum += w * d[j]
				}
				prev[i] = sum
			}
		}
	}

	var penalty float64
	for _, l := range a.layers {
		penalty += l.penalty()
	}

	a.step++
	for _, l := range a.layers {
		l.adamStep(lr, a.step)
	}
	return loss/float64(a.width*len(idx)) + penalty
}

// evaluate returns the mean squared error over samples plus the L2 penalty.
func (a *Autoencoder) evaluate(samples [][]float64, acts [][]float64) float64 {
	var loss float64
	for _, s := range samples {
		a.forward(s, acts)
		for j, y := range acts[len(acts)-1] {
			diff := y - s[j]
			loss += diff * diff
		}
	}
	var penalty float64
	for _, l := range a.layers {
		penalty += l.penalty()
	}
	return loss/float64(a.width*len(samples)) + penalty
}
