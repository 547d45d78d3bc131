package inquiries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBoard() Board {
	return GroupByStatus([]Inquiry{
		{ID: "a", Status: StatusPending},
		{ID: "b", Status: StatusPending},
		{ID: "c", Status: StatusClosedWon},
		{ID: "d", Status: StatusClosed},
	})
}

func TestGroupByStatus(t *testing.T) {
	board := sampleBoard()

	require.Len(t, board.Columns, len(Columns))
	assert.Len(t, board.Column(StatusPending), 2)
	assert.Len(t, board.Column(StatusClosedWon), 1)
	assert.Empty(t, board.Column(StatusGhosted))
	require.Len(t, board.Other, 1)
	assert.Equal(t, "d", board.Other[0].ID)

	for _, col := range board.Columns {
		for _, card := range col.Cards {
			assert.Equal(t, col.Status, card.Status)
		}
	}
}

func TestBoardMove(t *testing.T) {
	board := sampleBoard()

	next, move, err := board.Move("b", StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, Move{ID: "b", From: StatusPending, To: StatusInProgress}, move)

	assert.Len(t, next.Column(StatusPending), 1)
	moved := next.Column(StatusInProgress)
	require.Len(t, moved, 1)
	assert.Equal(t, StatusInProgress, moved[0].Status)

	// original assignment is untouched
	assert.Len(t, board.Column(StatusPending), 2)
	assert.Empty(t, board.Column(StatusInProgress))
}

func TestBoardMovePrependsToDestination(t *testing.T) {
	next, _, err := sampleBoard().Move("a", StatusClosedWon)
	require.NoError(t, err)
	won := next.Column(StatusClosedWon)
	require.Len(t, won, 2)
	assert.Equal(t, "a", won[0].ID)
	assert.Equal(t, "c", won[1].ID)
}

func TestBoardMoveFromOther(t *testing.T) {
	next, move, err := sampleBoard().Move("d", StatusClosedLost)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, move.From)
	assert.Empty(t, next.Other)
	assert.Len(t, next.Column(StatusClosedLost), 1)
}

func TestBoardMoveErrors(t *testing.T) {
	board := sampleBoard()

	_, _, err := board.Move("a", StatusClosed)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, _, err = board.Move("missing", StatusPending)
	assert.ErrorIs(t, err, ErrNotFound)
}
