package buffer

import (
	"math"
	"sync"
)

type Average float64
type Minimum float64
type Maximum float64

// DistanceBuffer is a fixed-size ring of recent sample distances. The first
// value fills the whole ring so averages are sane before a full revolution.
type DistanceBuffer struct {
	position int
	size     int
	data     []float64
	lock     sync.Mutex
	first    bool
	count    int
}

func NewDistanceBuffer(size int) *DistanceBuffer {
	b := DistanceBuffer{}
	b.first = true
	b.size = size
	b.data = make([]float64, size)
	return &b
}

func (b *DistanceBuffer) AddItem(val float64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.data[b.position] = val
	b.position += 1
	b.count += 1
	if b.position == b.size {
		b.position = 0
	}
	if b.first {
		// fill buffer
		for i := 0; i < b.size; i++ {
			b.data[i] = val
		}
		b.first = false
	}
}

// Count returns the number of samples ever added.
func (b *DistanceBuffer) Count() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.count
}

// Last returns the most recently added value, or 0 before any sample.
func (b *DistanceBuffer) Last() float64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.count == 0 {
		return 0
	}
	index := b.position - 1
	if index < 0 {
		index = b.size - 1
	}
	return b.data[index]
}

func (b *DistanceBuffer) GetAverageMinMax() (Average, Minimum, Maximum) {
	b.lock.Lock()
	defer b.lock.Unlock()
	min := math.MaxFloat64
	max := 0.0
	sum := 0.0
	for _, x := range b.data {
		sum += x
		if x > max {
			max = x
		}
		if x < min {
			min = x
		}
	}
	return Average(sum / float64(b.size)), Minimum(min), Maximum(max)
}
