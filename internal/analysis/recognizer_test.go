package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/you/go-dish-demand/internal/catalog"
)

func TestLabelRecognizer(t *testing.T) {
	r := NewLabelRecognizer(catalog.Default())
	require.Equal(t, "label", r.Name())

	d, err := r.Recognize(context.Background(), "Mozzarella In Carrozza", Photo{Filename: "plate.jpg", Size: 2048})
	require.NoError(t, err)
	require.True(t, d.Recognized)
	require.Equal(t, "Mozzarella In Carrozza", d.Name)

	d, err = r.Recognize(context.Background(), "Sushi", Photo{Filename: "sushi.png"})
	require.NoError(t, err)
	require.False(t, d.Recognized)
	require.Equal(t, catalog.Unknown.Name, d.Name)
}

func TestLabelRecognizer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLabelRecognizer(catalog.Default()).Recognize(ctx, "Bistec Encebollado", Photo{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
