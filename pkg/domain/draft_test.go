package domain

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft() *Draft {
	return &Draft{
		Title:              "Orbit",
		Slug:               "orbit",
		ProjectType:        "web",
		HeaderImageURL:     "https://cdn.example.com/header.webp",
		SelectedCategories: []int64{1},
		Descriptions:       []string{"a", "b", "c"},
		Images: []DraftImage{
			{ImageURL: "x"},
			{ImageURL: "y"},
			{ImageURL: "z"},
		},
	}
}

func TestNewDraftStartsWithTwoDescriptions(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, []string{"", ""}, d.Descriptions)
	assert.Empty(t, d.Images)
	assert.Empty(t, d.SelectedCategories)
}

func TestDraftFromPortfolioSplitsHeader(t *testing.T) {
	p := &Portfolio{
		ID:           7,
		Title:        "Orbit",
		Slug:         "orbit",
		ProjectType:  "web",
		Descriptions: []string{"one", "two"},
		Images: []PortfolioImage{
			{ImageURL: "s1", AltText: "first", IsHeader: 0},
			{ImageURL: "h", IsHeader: 1},
			{ImageURL: "s2", IsHeader: 0},
		},
		Categories: []Category{{ID: 3, Slug: "ui"}, {ID: 5, Slug: "web"}},
		CreatedAt:  time.Now(),
	}

	d := DraftFromPortfolio(p)
	assert.Equal(t, "h", d.HeaderImageURL)
	assert.Equal(t, []DraftImage{{ImageURL: "s1", AltText: "first"}, {ImageURL: "s2"}}, d.Images)
	assert.Equal(t, []int64{3, 5}, d.SelectedCategories)
	assert.Equal(t, []string{"one", "two"}, d.Descriptions)

	// The draft must not alias the record.
	d.Descriptions[0] = "changed"
	assert.Equal(t, "one", p.Descriptions[0])
}

func TestCloneIsDeep(t *testing.T) {
	d := sampleDraft()
	c := d.Clone()
	require.True(t, d.Equal(c))

	require.NoError(t, c.UpdateDescriptionAt(0, "changed"))
	c.ToggleCategory(9)
	require.NoError(t, c.ReorderImages(0, 2))

	assert.Equal(t, "a", d.Descriptions[0])
	assert.Equal(t, []int64{1}, d.SelectedCategories)
	assert.Equal(t, "x", d.Images[0].ImageURL)
	assert.False(t, d.Equal(c))
}

func TestEqualTreatsNilAndEmptyAlike(t *testing.T) {
	a := &Draft{}
	b := &Draft{SelectedCategories: []int64{}, Descriptions: []string{}, Images: []DraftImage{}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestSetField(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.SetField(FieldPublisherName, "Acme"))
	require.NoError(t, d.SetField(FieldHeaderImage, "blob:1"))
	assert.Equal(t, "Acme", d.Field(FieldPublisherName))
	assert.Equal(t, "blob:1", d.HeaderImageURL)
	assert.Error(t, d.SetField("nope", "x"))
}

func TestSetTitleAutoSlug(t *testing.T) {
	d := NewDraft()
	d.SetTitle("  Hello, World! 2024 ", true)
	assert.Equal(t, "hello-world-2024", d.Slug)

	d.SetTitle("", true)
	assert.Equal(t, "", d.Slug)

	d.Slug = "kept"
	d.SetTitle("Other", false)
	assert.Equal(t, "kept", d.Slug)
}

func TestToggleCategory(t *testing.T) {
	d := NewDraft()
	d.ToggleCategory(4)
	d.ToggleCategory(2)
	assert.Equal(t, []int64{4, 2}, d.SelectedCategories)
	assert.True(t, d.HasCategory(2))

	d.ToggleCategory(4)
	assert.Equal(t, []int64{2}, d.SelectedCategories)
}

func TestDeleteDescriptionPadsToMinimum(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.UpdateDescriptionAt(0, "first"))
	require.NoError(t, d.UpdateDescriptionAt(1, "second"))

	require.NoError(t, d.DeleteDescriptionAt(0))
	assert.Equal(t, []string{"second", ""}, d.Descriptions)

	require.NoError(t, d.DeleteDescriptionAt(1))
	assert.Len(t, d.Descriptions, MinDescriptions)
}

func TestDeleteDescriptionAboveMinimum(t *testing.T) {
	d := sampleDraft()
	require.NoError(t, d.DeleteDescriptionAt(1))
	assert.Equal(t, []string{"a", "c"}, d.Descriptions)
}

func TestDescriptionIndexErrors(t *testing.T) {
	d := NewDraft()
	assert.ErrorIs(t, d.UpdateDescriptionAt(2, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, d.DeleteDescriptionAt(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, d.ReorderDescriptions(0, 5), ErrIndexOutOfRange)
	_, err := d.DeleteImageAt(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAddDescription(t *testing.T) {
	d := NewDraft()
	d.AddDescription()
	assert.Len(t, d.Descriptions, 3)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"adjacent", 1, 2, []string{"a", "c", "b", "d"}},
		{"same", 2, 2, []string{"a", "b", "c", "d"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := []string{"a", "b", "c", "d"}
			got, err := Move(in, tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, []string{"a", "b", "c", "d"}, in, "input must not change")
		})
	}
}

func TestReorderIsPermutation(t *testing.T) {
	d := sampleDraft()
	for from := range d.Images {
		for to := range d.Images {
			c := d.Clone()
			require.NoError(t, c.ReorderImages(from, to))
			require.NoError(t, c.ReorderDescriptions(from, to))

			gotImgs := slices.Clone(c.Images)
			wantImgs := slices.Clone(d.Images)
			byURL := func(a, b DraftImage) int {
				if a.ImageURL < b.ImageURL {
					return -1
				}
				if a.ImageURL > b.ImageURL {
					return 1
				}
				return 0
			}
			slices.SortFunc(gotImgs, byURL)
			slices.SortFunc(wantImgs, byURL)
			assert.Equal(t, wantImgs, gotImgs)

			gotDesc := slices.Clone(c.Descriptions)
			slices.Sort(gotDesc)
			assert.Equal(t, []string{"a", "b", "c"}, gotDesc)
			assert.Equal(t, d.Images[from], c.Images[to])
		}
	}
}

func TestDeleteImageAt(t *testing.T) {
	d := sampleDraft()
	removed, err := d.DeleteImageAt(1)
	require.NoError(t, err)
	assert.Equal(t, "y", removed.ImageURL)
	assert.Equal(t, []DraftImage{{ImageURL: "x"}, {ImageURL: "z"}}, d.Images)
}

func TestAppendImageAndAltText(t *testing.T) {
	d := NewDraft()
	d.AppendImage("blob:a", "")
	require.NoError(t, d.SetAltText(0, "hero"))
	assert.Equal(t, []DraftImage{{ImageURL: "blob:a", AltText: "hero"}}, d.Images)
	assert.ErrorIs(t, d.SetAltText(3, "x"), ErrIndexOutOfRange)
}

func TestReplaceImageAtKeepsAltText(t *testing.T) {
	d := sampleDraft()
	require.NoError(t, d.SetAltText(1, "second"))
	before := d.Clone()

	old, err := d.ReplaceImageAt(1, "blob:new")
	require.NoError(t, err)
	assert.Equal(t, "y", old)
	assert.Equal(t, DraftImage{ImageURL: "blob:new", AltText: "second"}, d.Images[1])
	assert.Equal(t, "y", before.Images[1].ImageURL)

	_, err = d.ReplaceImageAt(-1, "z")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
