package rnnvad

import "math"

// featureDim is the flattened feature vector size: band energies are not
// fed directly (the cepstrum already summarises them), so the network sees
// the cepstrum, its two derivatives, and the variability scalar.
const featureDim = NumCepstralCoeffs*3 + 1

// hiddenSize is the GRU's hidden state width.
const hiddenSize = 24

// deterministicWeight fills a weight matrix with a fixed, reproducible
// pseudo-random pattern. There is no trained weight set in the reference
// corpus to port, so the network's structure (GRU followed by a
// speech-probability FC head) is real but its coefficients are a stand-in;
// see the design notes for why this is the chosen tradeoff.
func deterministicWeight(rows, cols int, seed float64) [][]float64 {
	w := make([][]float64, rows)
	for i := range w {
		w[i] = make([]float64, cols)
		for j := range w[i] {
			w[i][j] = 0.15 * math.Sin(seed+float64(i)*1.37+float64(j)*0.91)
		}
	}
	return w
}

// gruWeights bundles one gate's input and recurrent weight matrices plus
// its bias.
type gruWeights struct {
	wIn   [][]float64
	wRec  [][]float64
	bias  []float64
}

func newGruWeights(seed float64) gruWeights {
	return gruWeights{
		wIn:  deterministicWeight(hiddenSize, featureDim, seed),
		wRec: deterministicWeight(hiddenSize, hiddenSize, seed+5.0),
		bias: make([]float64, hiddenSize),
	}
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// Network is a single-layer GRU followed by a fully connected speech
// probability head, scoring one feature vector per call while carrying its
// hidden state across calls.
type Network struct {
	updateGate gruWeights
	resetGate  gruWeights
	candidate  gruWeights

	fcWeights []float64
	fcBias    float64

	hidden []float64
}

// NewNetwork constructs a network with zeroed hidden state.
func NewNetwork() *Network {
	fc := deterministicWeight(1, hiddenSize, 3.14)[0]
	return &Network{
		updateGate: newGruWeights(1.0),
		resetGate:  newGruWeights(2.0),
		candidate:  newGruWeights(4.0),
		fcWeights:  fc,
		hidden:     make([]float64, hiddenSize),
	}
}

func matVec(w [][]float64, x []float64) []float64 {
	out := make([]float64, len(w))
	for i, row := range w {
		var sum float64
		for j, v := range row {
			sum += v * x[j]
		}
		out[i] = sum
	}
	return out
}

func (n *Network) step(x []float64) {
	uIn := matVec(n.updateGate.wIn, x)
	uRec := matVec(n.updateGate.wRec, n.hidden)
	rIn := matVec(n.resetGate.wIn, x)
	rRec := matVec(n.resetGate.wRec, n.hidden)

	update := make([]float64, hiddenSize)
	reset := make([]float64, hiddenSize)
	for i := 0; i < hiddenSize; i++ {
		update[i] = sigmoid(uIn[i] + uRec[i] + n.updateGate.bias[i])
		reset[i] = sigmoid(rIn[i] + rRec[i] + n.resetGate.bias[i])
	}

	resetHidden := make([]float64, hiddenSize)
	for i := range resetHidden {
		resetHidden[i] = reset[i] * n.hidden[i]
	}

	cIn := matVec(n.candidate.wIn, x)
	cRec := matVec(n.candidate.wRec, resetHidden)
	candidate := make([]float64, hiddenSize)
	for i := 0; i < hiddenSize; i++ {
		candidate[i] = math.Tanh(cIn[i] + cRec[i] + n.candidate.bias[i])
	}

	for i := 0; i < hiddenSize; i++ {
		n.hidden[i] = (1-update[i])*n.hidden[i] + update[i]*candidate[i]
	}
}

// Score runs one feature vector through the network, updating hidden state
// and returning a speech-probability scalar in [0, 1].
func (n *Network) Score(f Features) float64 {
	x := make([]float64, featureDim)
	copy(x[0:NumCepstralCoeffs], f.Cepstrum[:])
	copy(x[NumCepstralCoeffs:2*NumCepstralCoeffs], f.CepstrumDelta[:])
	copy(x[2*NumCepstralCoeffs:3*NumCepstralCoeffs], f.CepstrumDelta2[:])
	x[3*NumCepstralCoeffs] = f.Variability

	n.step(x)

	var sum float64
	for i, w := range n.fcWeights {
		sum += w * n.hidden[i]
	}
	return sigmoid(sum + n.fcBias)
}

// Reset clears the recurrent hidden state.
func (n *Network) Reset() {
	for i := range n.hidden {
		n.hidden[i] = 0
	}
}
