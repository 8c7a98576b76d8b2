package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementsOrderedAndContiguous(t *testing.T) {
	elems := Elements()
	require.Equal(t, Size(), len(elems))

	for i, e := range elems {
		assert.Equal(t, i+1, e.StepOrder, "element %s out of order", e.Kind)
		assert.NotEmpty(t, e.Name)
		assert.NotEmpty(t, e.Instructions)
		require.NotNil(t, e.DefaultPosition, "element %s has no default position", e.Kind)
	}
}

func TestDefaultCoordinatesWithinBounds(t *testing.T) {
	resolutions := []struct{ w, h int }{
		{1080, 2400},
		{1440, 3200},
		{720, 1600},
	}
	for _, res := range resolutions {
		defaults := DefaultCoordinates(res.w, res.h)
		require.Equal(t, Size(), len(defaults))
		for _, d := range defaults {
			assert.GreaterOrEqual(t, d.X, 0, "%s x at %dx%d", d.Kind, res.w, res.h)
			assert.Less(t, d.X, res.w, "%s x at %dx%d", d.Kind, res.w, res.h)
			assert.GreaterOrEqual(t, d.Y, 0, "%s y at %dx%d", d.Kind, res.w, res.h)
			assert.Less(t, d.Y, res.h, "%s y at %dx%d", d.Kind, res.w, res.h)
		}
	}
}

func TestDefaultCoordinatesDeterministic(t *testing.T) {
	a := DefaultCoordinates(1080, 2400)
	b := DefaultCoordinates(1080, 2400)
	assert.Equal(t, a, b)
}

func TestDefaultCoordinatesScaleWithResolution(t *testing.T) {
	small := DefaultCoordinates(720, 1600)
	large := DefaultCoordinates(1440, 3200)
	for i := range small {
		assert.InDelta(t, float64(small[i].X)/720, float64(large[i].X)/1440, 0.01,
			"%s x should keep its relative position", small[i].Kind)
		assert.InDelta(t, float64(small[i].Y)/1600, float64(large[i].Y)/3200, 0.01,
			"%s y should keep its relative position", small[i].Kind)
	}
}

func TestParseElementKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ElementKind
		wantErr bool
	}{
		{in: "main_plus_button", want: KindMainPlusButton},
		{in: "publish_button", want: KindPublishButton},
		// deprecated aliases resolve to their canonical kind
		{in: "write_button", want: KindMainPlusButton},
		{in: "home_button", want: KindWriteMenuBlog},
		{in: "copy_link_button", want: KindCopyURLButton},
		{in: "bold_button", want: KindTextSizeSmallest},
		{in: "white_color", want: KindTextSizeSmallest},
		{in: "text_color_button", want: KindTextSizeButton},
		{in: "no_such_element", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseElementKind(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestRequiredKinds(t *testing.T) {
	required := RequiredKinds()
	assert.Len(t, required, Size()-2)
	assert.NotContains(t, required, KindImageButton)
	assert.NotContains(t, required, KindLinkButton)
	assert.Contains(t, required, KindMainPlusButton)
	assert.Contains(t, required, KindPublishButton)
}

func TestByKind(t *testing.T) {
	elem, ok := ByKind(KindTitleField)
	require.True(t, ok)
	assert.Equal(t, KindTitleField, elem.Kind)

	_, ok = ByKind(ElementKind("bogus"))
	assert.False(t, ok)
}
