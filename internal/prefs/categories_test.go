package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoriesPerTeam(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	got, err := s.TeamCategories("t1")
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, s.AddCategory("t1", "Garden"))
	require.NoError(t, s.AddCategory("t1", "garden"))
	require.NoError(t, s.AddCategory("t1", "  "))
	require.NoError(t, s.AddCategory("t1", "Audio"))
	require.NoError(t, s.AddCategory("t2", "Pets"))

	got, err = s.TeamCategories("t1")
	require.NoError(t, err)
	require.Equal(t, []string{"Audio", "Garden"}, got)

	got, err = s.TeamCategories("t2")
	require.NoError(t, err)
	require.Equal(t, []string{"Pets"}, got)
}
