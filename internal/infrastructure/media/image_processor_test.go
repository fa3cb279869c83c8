package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExtension(t *testing.T) {
	assert.Equal(t, "svg", extractExtension("data:image/svg+xml;base64,PHN2Zz4="))
	assert.Equal(t, "png", extractExtension("data:image/png;base64,iVBOR"))
	assert.Equal(t, "jpg", extractExtension("data:image/jpeg;base64,/9j/"))
	assert.Equal(t, "webp", extractExtension("data:image/webp;base64,UklGR"))
	assert.Equal(t, "", extractExtension("data:application/pdf;base64,JVBER"))
	assert.Equal(t, "", extractExtension(""))
}

func TestProcessNoticeImageSVG(t *testing.T) {
	base := t.TempDir()
	p := NewImageProcessor(base)

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><rect width="10" height="10"/></svg>`
	data := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	src, thumbs, err := p.ProcessNoticeImage(data, "n-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "/media/images/notices/n-1-"), src)
	assert.True(t, strings.HasSuffix(src, ".svg"), src)
	assert.Empty(t, thumbs)

	written, err := os.ReadFile(filepath.Join(base, "images", "notices", filepath.Base(src)))
	require.NoError(t, err)
	assert.Equal(t, svg, string(written))
}

func TestProcessNoticeImageRejectsBadInput(t *testing.T) {
	p := NewImageProcessor(t.TempDir())

	_, _, err := p.ProcessNoticeImage("", "n-1")
	assert.Error(t, err)

	_, _, err = p.ProcessNoticeImage("data:application/pdf;base64,JVBER", "n-1")
	assert.Error(t, err)

	_, _, err = p.ProcessNoticeImage("data:image/svg+xml;base64,!!!not-base64!!!", "n-1")
	assert.Error(t, err)
}

func TestDeleteNoticeImageRejectsEmptyPath(t *testing.T) {
	p := NewImageProcessor(t.TempDir())
	assert.Error(t, p.DeleteNoticeImage(""))
}
