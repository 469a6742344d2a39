package tracer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CastilloDel/debugito/internal/procmaps"
	"github.com/CastilloDel/debugito/internal/tracer"
)

func TestAddressConversion_RoundTrips(t *testing.T) {
	exe := procmaps.Entry{
		Range:  procmaps.AddressRange{Begin: 0x555555554000, End: 0x555555558000},
		Offset: 0x1000,
	}

	fileRelative := uint64(0x1234)
	runtime := tracer.FileRelativeToRuntime(fileRelative, exe)

	assert.Equal(t, fileRelative+exe.Range.Begin-exe.Offset, runtime)
	assert.Equal(t, fileRelative, tracer.RuntimeToFileRelative(runtime, exe))
}

func TestFileRelativeToRuntime_ZeroOffsetMapping(t *testing.T) {
	exe := procmaps.Entry{Range: procmaps.AddressRange{Begin: 0x400000, End: 0x401000}}
	assert.Equal(t, uint64(0x400000+0x10), tracer.FileRelativeToRuntime(0x10, exe))
}
