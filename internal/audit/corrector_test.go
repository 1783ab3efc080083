package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/deckaudit/internal/deck"
)

func TestCorrectPriority(t *testing.T) {
	rules := testRules(t)

	t.Run("forced middle digit with spacecraft fallback", func(t *testing.T) {
		// M3 carries middle digit 3; no eligible spacecraft means ending 3.
		assert.Equal(t, 733, CorrectPriority(rules, 712, "M3", false, false, false))
		// Any eligible spacecraft bumps the fallback ending to 4.
		assert.Equal(t, 734, CorrectPriority(rules, 712, "M3", true, false, false))
		assert.Equal(t, 734, CorrectPriority(rules, 712, "M3", false, true, false))
		assert.Equal(t, 734, CorrectPriority(rules, 712, "M3", false, false, true))
	})

	t.Run("forced ending digit wins regardless of spacecraft", func(t *testing.T) {
		assert.Equal(t, 701, CorrectPriority(rules, 705, "E1", true, false, false))
		assert.Equal(t, 701, CorrectPriority(rules, 705, "E1", false, false, false))
		assert.Equal(t, 746, CorrectPriority(rules, 745, "E6", true, true, true))
	})

	t.Run("unlisted customer keeps its middle digit", func(t *testing.T) {
		assert.Equal(t, 784, CorrectPriority(rules, 789, "1001", true, false, false))
		assert.Equal(t, 703, CorrectPriority(rules, 702, "1001", false, false, false))
	})

	t.Run("result stays in the deck priority band", func(t *testing.T) {
		for pri := 700; pri < 810; pri++ {
			for _, customer := range []string{"M3", "M8", "E1", "E6", "1001"} {
				got := CorrectPriority(rules, pri, customer, pri%2 == 0, false, false)
				assert.GreaterOrEqual(t, got, 700)
				assert.Less(t, got, 810)
			}
		}
	})

	t.Run("idempotent over its own output", func(t *testing.T) {
		for _, customer := range []string{"M3", "E1", "1001"} {
			once := CorrectPriority(rules, 712, customer, true, false, false)
			assert.Equal(t, once, CorrectPriority(rules, once, customer, true, false, false))
		}
	})
}

func TestAnnotate(t *testing.T) {
	rules := testRules(t)

	t.Run("fills derived columns", func(t *testing.T) {
		annotated := Annotate(rules, []deck.Order{ord("A", "1001", 712, deck.LevelNone)})
		require.Len(t, annotated, 1)

		assert.Equal(t, "Acme Imaging", annotated[0].CustomerName)
		assert.Equal(t, 714, annotated[0].SuggestedPriority)
		assert.False(t, annotated[0].Overridden)
	})

	t.Run("override replaces the computed priority", func(t *testing.T) {
		o := ord("A", "1001", 712, deck.LevelNone)
		o.Description = "Eastern Australia winter campaign"
		o.PurchaseOrder = "PO-7777"

		annotated := Annotate(rules, []deck.Order{o})
		require.Len(t, annotated, 1)

		// Exact purchase-order match outranks the partial description.
		assert.Equal(t, 761, annotated[0].SuggestedPriority)
		assert.True(t, annotated[0].Overridden)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		input := []deck.Order{ord("A", "M3", 712, deck.LevelNone)}
		Annotate(rules, input)
		assert.Equal(t, ord("A", "M3", 712, deck.LevelNone), input[0])
	})

	t.Run("re-annotation is stable", func(t *testing.T) {
		input := []deck.Order{
			ord("A", "M3", 712, deck.LevelNone),
			ord("B", "E1", 705, deck.LevelSelect),
		}
		assert.Equal(t, Annotate(rules, input), Annotate(rules, input))
	})
}
