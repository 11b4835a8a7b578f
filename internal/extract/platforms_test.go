package extract_test

import (
	"testing"

	"github.com/Aayan-01/CLOT/internal/extract"

	"github.com/stretchr/testify/require"
)

func TestPlatformsCanonicalOrder(t *testing.T) {
	got := extract.Platforms([]string{"You can sell this on eBay, Depop, or even Grailed."})
	require.Equal(t, []string{"Grailed", "Depop", "eBay"}, got)
}

func TestPlatformsCaseInsensitive(t *testing.T) {
	got := extract.Platforms([]string{"try GRAILED or depop"})
	require.Equal(t, []string{"Grailed", "Depop"}, got)
}

func TestPlatformsFragmentFallback(t *testing.T) {
	got := extract.Platforms([]string{"local flea markets and college fests; thrift pop-ups"})
	require.Equal(t, []string{"local flea markets", "college fests", "thrift pop-ups"}, got)
}

func TestPlatformsFragmentCap(t *testing.T) {
	got := extract.Platforms([]string{"a, b, c, d, e, f, g"})
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestPlatformsPassThroughWhenUnsplittable(t *testing.T) {
	long := "an extremely long description of a marketplace that has no commas at all whatsoever"
	got := extract.Platforms([]string{long})
	require.Equal(t, []string{long}, got)
}

func TestPlatformsEmpty(t *testing.T) {
	require.Nil(t, extract.Platforms(nil))
}
