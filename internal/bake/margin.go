package bake

// Dilate extends covered texels outward by up to margin texels. Each filled
// texel copies the value of the neighbor it was reached from; the queue is
// seeded in raster order and neighbors are visited left, right, down, up.
// It returns the filled mask (covered plus dilated). Only uncovered texels
// are ever written.
func Dilate(buf []float32, depth, width, height int, covered []bool, margin int) []bool {
	filled := append([]bool(nil), covered...)
	if margin <= 0 {
		return filled
	}

	dist := make([]int, len(covered))
	queue := make([]int, 0, len(covered))
	for i, c := range covered {
		if c {
			queue = append(queue, i)
		}
	}

	for head := 0; head < len(queue); head++ {
		p := queue[head]
		if dist[p] >= margin {
			continue
		}
		x, y := p%width, p/width

		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			q := ny*width + nx
			if filled[q] {
				continue
			}
			filled[q] = true
			dist[q] = dist[p] + 1
			copy(buf[q*depth:(q+1)*depth], buf[p*depth:(p+1)*depth])
			queue = append(queue, q)
		}
	}
	return filled
}
