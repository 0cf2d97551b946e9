package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

func TestDisplayNameFallbackOrder(t *testing.T) {
	b := NewViewModelBuilder(nil)

	vm := b.BuildResolved("1", &wardrobe.Item{ID: "1", Detail: &wardrobe.ItemDetail{Type: strPtr("blazer")}})
	assert.Equal(t, "Blazer", vm.DisplayName)

	vm = b.BuildResolved("2", &wardrobe.Item{ID: "2", Name: strPtr("")})
	assert.Equal(t, wardrobe.UnknownItemLabel, vm.DisplayName)

	vm = b.BuildResolved("3", &wardrobe.Item{ID: "3", Name: strPtr("  X  "), Detail: &wardrobe.ItemDetail{Type: strPtr("coat")}})
	assert.Equal(t, "X", vm.DisplayName)

	vm = b.BuildResolved("4", &wardrobe.Item{ID: "4", Name: strPtr("   "), Detail: &wardrobe.ItemDetail{Type: strPtr("  élan ")}})
	assert.Equal(t, "Élan", vm.DisplayName)
}

func TestBuildResolvedCallsImageResolverOnce(t *testing.T) {
	calls := 0
	b := NewViewModelBuilder(ImageURLResolverFunc(func(item *wardrobe.Item) *string {
		calls++
		return strPtr("https://cdn/" + item.ID)
	}))

	vm := b.BuildResolved("a", item("a"))
	assert.Equal(t, 1, calls)
	require.NotNil(t, vm.ThumbnailURL)
	assert.Equal(t, "https://cdn/a", *vm.ThumbnailURL)
	assert.Equal(t, wardrobe.StatusResolved, vm.Status)
}

func TestTypeAndColourOnlyFromDetailedProjection(t *testing.T) {
	b := NewViewModelBuilder(nil)

	minimal := b.BuildResolved("m", item("m"))
	assert.Nil(t, minimal.Type)
	assert.Nil(t, minimal.Colour)

	detailed := b.BuildResolved("d", &wardrobe.Item{
		ID:     "d",
		Detail: &wardrobe.ItemDetail{Type: strPtr(" shirt "), Colour: []string{"navy", "white"}},
	})
	require.NotNil(t, detailed.Type)
	assert.Equal(t, "shirt", *detailed.Type)
	assert.Equal(t, []string{"navy", "white"}, detailed.Colour)

	noColour := b.BuildResolved("n", &wardrobe.Item{ID: "n", Detail: &wardrobe.ItemDetail{Colour: []string{}}})
	assert.Nil(t, noColour.Type)
	assert.Nil(t, noColour.Colour)
}

func TestBuildMissing(t *testing.T) {
	vm := NewViewModelBuilder(nil).BuildMissing("gone")
	assert.Equal(t, wardrobe.OutfitItemViewModel{
		ID:          "gone",
		DisplayName: wardrobe.UnknownItemLabel,
		Status:      wardrobe.StatusMissing,
	}, vm)
	assert.True(t, vm.IsMissing())
}
