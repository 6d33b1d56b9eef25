package media

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodePNG(t *testing.T) {
	data, err := QRCodePNG("SP9-001", DefaultQRSize)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())
	assert.Equal(t, DefaultQRSize, img.Bounds().Dy())
}

func TestQRCodePNG_SizeOutOfRange(t *testing.T) {
	for _, size := range []int{0, MinQRSize - 1, MaxQRSize + 1} {
		_, err := QRCodePNG("SP9-001", size)
		assert.Error(t, err, "size %d", size)
	}
}
