package experiment

import (
	"testing"

	"github.com/matryer/is"
)

func TestParseMetricType(t *testing.T) {
	is := is.New(t)
	for _, token := range []string{"cr", "epc"} {
		m, err := ParseMetricType(token)
		is.NoErr(err)
		is.Equal(m.String(), token)
	}
	_, err := ParseMetricType("revenue")
	is.True(err != nil)
}

func TestDefaultMDE(t *testing.T) {
	is := is.New(t)
	is.Equal(ConversionRate.DefaultMDE(), 0.05)
	is.Equal(EarningsPerUnit.DefaultMDE(), 0.10)
}
