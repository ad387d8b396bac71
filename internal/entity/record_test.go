package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-fields/constants"
)

func TestNewRecord_FilenameFirst(t *testing.T) {
	r := NewRecord("nota.pdf")
	assert.Equal(t, []string{constants.FilenameColumn}, r.Keys())
	assert.Equal(t, "nota.pdf", r.Filename())
	assert.Equal(t, constants.RecordStatusOK, r.Status)
	assert.False(t, r.Failed())
}

func TestRecord_SetLastWriteWinsKeepsPosition(t *testing.T) {
	r := NewRecord("a.pdf")
	r.Set("Total", Present("10"))
	r.Set("Nome", Missing())
	r.Set("Total", Present("20"))

	assert.Equal(t, []string{"Arquivo", "Total", "Nome"}, r.Keys())
	v, ok := r.Get("Total")
	require.True(t, ok)
	assert.Equal(t, Present("20"), v)

	v, ok = r.Get("Nome")
	require.True(t, ok)
	assert.True(t, v.Absent)
	assert.Equal(t, "", v.Cell())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRecord_KeysIsACopy(t *testing.T) {
	r := NewRecord("a.pdf")
	keys := r.Keys()
	keys[0] = "changed"
	assert.Equal(t, "Arquivo", r.Keys()[0])
}

func TestRecord_Fail(t *testing.T) {
	r := NewRecord("a.pdf")
	r.Fail(nil)
	assert.False(t, r.Failed())

	r.Fail(errors.New("text: boom"))
	r.Fail(errors.Join(errors.New("region A"), errors.New("region B")))
	assert.True(t, r.Failed())
	assert.Equal(t, constants.RecordStatusFailed, r.Status)
	assert.Equal(t, "text: boom; region A; region B", r.Error)
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := NewRecord("a.pdf")
	r.Set("Total:", Present("1.234,56"))
	r.Set("CPF", Missing())
	r.Set("Vazio", Present(""))

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Arquivo":"a.pdf","Total:":"1.234,56","CPF":null,"Vazio":""}`, string(b))
}

func TestRegion_Rect(t *testing.T) {
	assert.True(t, Region{X: 1, Y: 1, W: 0, H: 5}.Rect().Empty())
	assert.True(t, Region{X: 1, Y: 1, W: 5, H: -1}.Rect().Empty())
	r := Region{X: 10, Y: 20, W: 100, H: 30}.Rect()
	assert.Equal(t, 10, r.Min.X)
	assert.Equal(t, 50, r.Max.Y)
}

func TestNewDocument(t *testing.T) {
	d := NewDocument("/data/in/nota 01.pdf", 42)
	assert.Equal(t, "nota 01.pdf", d.Filename)
	assert.Equal(t, "/data/in/nota 01.pdf", d.SourcePath)
	assert.EqualValues(t, 42, d.FileSize)
}
