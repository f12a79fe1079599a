package transport

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressReaderEmitsIncreasingPercents(t *testing.T) {
	t.Parallel()

	src := bytes.NewReader(make([]byte, 100))
	var seen []int
	pr := newProgressReader(src, 100, 99, func(p int) { seen = append(seen, p) })

	buf := make([]byte, 10)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		}
	}

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		require.Greater(t, seen[i], seen[i-1], "percent must strictly increase")
	}
	require.Equal(t, 99, seen[len(seen)-1], "capped readers never report past the cap")
}

func TestProgressReaderCapsAtLimit(t *testing.T) {
	t.Parallel()

	src := bytes.NewReader(make([]byte, 64))
	var seen []int
	pr := newProgressReader(src, 64, 50, func(p int) { seen = append(seen, p) })

	_, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)
	for _, p := range seen {
		require.LessOrEqual(t, p, 50)
	}
	require.Equal(t, 50, seen[len(seen)-1])
}

func TestProgressReaderSuppressesRepeats(t *testing.T) {
	t.Parallel()

	// One-byte reads over a large total produce many reads per percent step.
	src := bytes.NewReader(make([]byte, 300))
	var seen []int
	pr := newProgressReader(src, 300, 99, func(p int) { seen = append(seen, p) })

	buf := make([]byte, 1)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		}
	}

	counts := make(map[int]int)
	for _, p := range seen {
		counts[p]++
		require.Equal(t, 1, counts[p], "each percent value is reported at most once")
	}
}
