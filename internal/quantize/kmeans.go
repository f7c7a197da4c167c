package quantize

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"sort"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
)

// KMeans implements quantization using k-means clustering in RGB space.
// Seeding is derived from the sample content, so the same pixels always
// produce the same palette.
type KMeans struct {
	maxIterations int
	convergence   float64

	// SkipTransparent ignores fully transparent pixels.
	SkipTransparent bool
}

// NewKMeans creates a new KMeans quantizer with default settings.
func NewKMeans() *KMeans {
	return &KMeans{
		maxIterations: 20,
		convergence:   2.0,
	}
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Quantize implements Quantizer.
func (e *KMeans) Quantize(s *image.Sample, count int) (colour.Palette, error) {
	if err := checkInput(s, count); err != nil {
		return colour.Palette{}, err
	}

	points, unique := e.samplePoints(s)
	if len(points) == 0 {
		return colour.Palette{}, nil
	}

	// With no more distinct colours than requested, clustering is exact.
	if count >= len(unique) {
		return uniquePalette(points, unique), nil
	}

	rng := rand.New(rand.NewSource(contentSeed(s))) // #nosec G404 -- deterministic clustering, not security
	centroids, weights := e.kmeans(rng, points, count)

	idx := make([]int, len(centroids))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]] > weights[idx[b]]
	})

	colours := make([]colour.RGB, 0, count)
	ordered := make([]float64, 0, count)
	for _, i := range idx {
		if weights[i] == 0 {
			continue
		}
		c := centroids[i]
		colours = append(colours, colour.RGB{R: roundChannel(c.R), G: roundChannel(c.G), B: roundChannel(c.B)})
		ordered = append(ordered, weights[i])
	}

	return colour.NewPaletteWithWeights(colours, ordered), nil
}

// samplePoints collects strided pixels and the distinct colours in first-seen order.
func (e *KMeans) samplePoints(s *image.Sample) ([]point3D, []colour.RGB) {
	points := make([]point3D, 0, s.Len()/SampleStride+1)
	seen := make(map[colour.RGB]bool)
	var unique []colour.RGB

	for i := 0; i+3 < len(s.Pix); i += SampleStride * 4 {
		if e.SkipTransparent && s.Pix[i+3] == 0 {
			continue
		}
		rgb := colour.RGB{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2]}
		points = append(points, point3D{R: float64(rgb.R), G: float64(rgb.G), B: float64(rgb.B)})
		if !seen[rgb] {
			seen[rgb] = true
			unique = append(unique, rgb)
		}
	}

	return points, unique
}

// uniquePalette returns every distinct colour ordered by frequency.
func uniquePalette(points []point3D, unique []colour.RGB) colour.Palette {
	counts := make(map[colour.RGB]int, len(unique))
	for _, p := range points {
		counts[colour.RGB{R: uint8(p.R), G: uint8(p.G), B: uint8(p.B)}]++
	}

	ordered := append([]colour.RGB(nil), unique...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return counts[ordered[i]] > counts[ordered[j]]
	})

	weights := make([]float64, len(ordered))
	for i, c := range ordered {
		weights[i] = float64(counts[c]) / float64(len(points))
	}

	return colour.NewPaletteWithWeights(ordered, weights)
}

// contentSeed hashes the sample dimensions and pixels into a clustering seed.
func contentSeed(s *image.Sample) int64 {
	hasher := sha256.New()

	dimBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(dimBytes[0:4], uint32(s.Width))  // #nosec G115 -- sample dimensions are non-negative
	binary.LittleEndian.PutUint32(dimBytes[4:8], uint32(s.Height)) // #nosec G115 -- sample dimensions are non-negative
	hasher.Write(dimBytes)
	hasher.Write(s.Pix)

	sum := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 -- wraparound is fine for a seed
}

// kmeans performs k-means clustering on the sampled points.
// Returns centroids and their weights (relative cluster sizes).
func (e *KMeans) kmeans(rng *rand.Rand, points []point3D, k int) ([]point3D, []float64) {
	centroids := e.initializeCentroids(rng, points, k)
	assignments := make([]int, len(points))

	for range e.maxIterations {
		changed := 0
		for i, point := range points {
			nearest := findNearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Fewer than 1% of points moved.
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		newCentroids := recalculateCentroids(rng, points, assignments, k)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		if totalMovement/float64(k) < e.convergence {
			break
		}
	}

	// Final assignment against the settled centroids.
	for i, point := range points {
		assignments[i] = findNearestCentroid(point, centroids)
	}

	weights := make([]float64, k)
	for _, assignment := range assignments {
		weights[assignment]++
	}
	total := float64(len(assignments))
	for i := range weights {
		weights[i] /= total
	}

	return centroids, weights
}

// initializeCentroids picks initial centroids using k-means++.
func (e *KMeans) initializeCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		totalDistance := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, centroid := range centroids {
				minDist = min(minDist, point.distance(centroid))
			}
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		if totalDistance == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		chosen := len(points) - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// findNearestCentroid finds the index of the nearest centroid to a point.
func findNearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0

	for i, centroid := range centroids {
		if dist := point.distance(centroid); dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	return nearest
}

// recalculateCentroids recalculates centroid positions based on assigned points.
func recalculateCentroids(rng *rand.Rand, points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] > 0 {
			n := float64(counts[i])
			centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
		} else {
			// Empty cluster, reseed from a sampled point.
			centroids[i] = points[rng.Intn(len(points))]
		}
	}

	return centroids
}

func roundChannel(v float64) uint8 {
	return uint8(math.Round(max(0, min(255, v))))
}
