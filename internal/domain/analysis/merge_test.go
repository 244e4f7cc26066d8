package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repair-bot/internal/domain/entity"
)

func region(x1, y1, x2, y2 int) entity.Region {
	b := entity.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
	return entity.Region{Box: b, Area: float64(b.Area()), Kind: entity.RegionChanged}
}

func TestMergeRegions_AbsorbsNeighbours(t *testing.T) {
	in := []entity.Region{
		region(0, 0, 100, 100),
		region(150, 0, 250, 100), // зазор 50
		region(1000, 1000, 1100, 1100),
	}

	out := MergeRegions(in, 80)

	require.Len(t, out, 2)
	require.Equal(t, entity.Box{X1: 0, Y1: 0, X2: 250, Y2: 100}, out[0].Box)
	require.Equal(t, 20000.0, out[0].Area)
	require.Equal(t, in[2], out[1])
}

func TestMergeRegions_Chain(t *testing.T) {
	// Первая и третья области далеко друг от друга, но объединённый
	// прямоугольник после второго прохода уже близко к третьей.
	in := []entity.Region{
		region(0, 0, 50, 50),
		region(200, 0, 250, 50),
		region(100, 0, 150, 50),
	}

	out := MergeRegions(in, 80)

	require.Len(t, out, 1)
	require.Equal(t, entity.Box{X1: 0, Y1: 0, X2: 250, Y2: 50}, out[0].Box)
}

func TestMergeRegions_Idempotent(t *testing.T) {
	in := []entity.Region{
		region(10, 10, 60, 60),
		region(100, 10, 150, 60),
		region(400, 400, 450, 450),
		region(500, 420, 520, 460),
		region(900, 10, 950, 40),
		region(200, 200, 230, 230),
	}

	once := MergeRegions(in, 80)
	twice := MergeRegions(once, 80)

	require.Equal(t, once, twice)
}

func TestMergeRegions_NoOverlapInOutput(t *testing.T) {
	var in []entity.Region
	for i := 0; i < 40; i++ {
		x := (i * 97) % 900
		y := (i * 53) % 700
		in = append(in, region(x, y, x+30+i%20, y+25+i%15))
	}

	out := MergeRegions(in, 40)

	for i := range out {
		for j := i + 1; j < len(out); j++ {
			require.GreaterOrEqual(t, out[i].Box.Gap(out[j].Box), 40.0, "boxes %d and %d", i, j)
		}
	}
	require.Equal(t, out, MergeRegions(in, 40))
}

func TestMergeRegions_Empty(t *testing.T) {
	require.Nil(t, MergeRegions(nil, 80))
}
