package dbquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garaadka-laundry/internal/infra/database/dbtest"
)

func TestContains(t *testing.T) {
	assert.Equal(t, "%amina%", Contains("Amina"))
	assert.Equal(t, "%!%%", Contains("%"))
	assert.Equal(t, "%a!_b%", Contains("a_b"))
	assert.Equal(t, "%50!!%", Contains("50!"))
}

type note struct {
	ID   uint
	Body string
}

func TestContains_MatchesLiterally(t *testing.T) {
	db := dbtest.New(t, &note{})
	require.NoError(t, db.Create(&[]note{{Body: "100% cotton"}, {Body: "silk"}, {Body: "dry_clean"}, {Body: "dryXclean"}}).Error)

	find := func(s string) []string {
		var bodies []string
		require.NoError(t, db.Model(&note{}).Where("LOWER(body) LIKE ? "+Escape, Contains(s)).Order("id").Pluck("body", &bodies).Error)
		return bodies
	}

	assert.Equal(t, []string{"100% cotton"}, find("%"))
	assert.Equal(t, []string{"dry_clean"}, find("_"))
	assert.Equal(t, []string{"dry_clean"}, find("dry_c"))
	assert.Equal(t, []string{"silk"}, find("SILK"))
}
