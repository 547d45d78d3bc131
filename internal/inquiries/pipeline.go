package inquiries

import "fmt"

// ColumnDef is one fixed lifecycle column of the pipeline board.
type ColumnDef struct {
	Status Status `json:"status"`
	Title  string `json:"title"`
}

var Columns = []ColumnDef{
	{Status: StatusPending, Title: "New"},
	{Status: StatusInProgress, Title: "In progress"},
	{Status: StatusGhosted, Title: "Ghosted"},
	{Status: StatusClosedWon, Title: "Won"},
	{Status: StatusClosedLost, Title: "Lost"},
}

// IsColumn reports whether s has a pipeline column. Legacy "closed" does not.
func IsColumn(s Status) bool {
	for _, c := range Columns {
		if c.Status == s {
			return true
		}
	}
	return false
}

type Column struct {
	Status Status    `json:"status"`
	Title  string    `json:"title"`
	Cards  []Inquiry `json:"cards"`
}

// Board is a column assignment of inquiries. Inquiries whose status has no
// column are kept aside in Other.
type Board struct {
	Columns []Column  `json:"columns"`
	Other   []Inquiry `json:"other"`
}

// Move describes one card transition.
type Move struct {
	ID   string `json:"id"`
	From Status `json:"from"`
	To   Status `json:"to"`
}

func GroupByStatus(items []Inquiry) Board {
	board := Board{
		Columns: make([]Column, len(Columns)),
		Other:   []Inquiry{},
	}
	index := make(map[Status]int, len(Columns))
	for i, def := range Columns {
		board.Columns[i] = Column{Status: def.Status, Title: def.Title, Cards: []Inquiry{}}
		index[def.Status] = i
	}
	for _, inq := range items {
		if i, ok := index[inq.Status]; ok {
			board.Columns[i].Cards = append(board.Columns[i].Cards, inq)
			continue
		}
		board.Other = append(board.Other, inq)
	}
	return board
}

// Move returns a new board with card id placed at the top of the destination
// column and its status set to that column. The receiver is left unchanged.
func (b Board) Move(id string, dest Status) (Board, Move, error) {
	if !IsColumn(dest) {
		return b, Move{}, ErrInvalidStatus
	}

	var (
		card  Inquiry
		found bool
	)
	next := Board{
		Columns: make([]Column, len(b.Columns)),
		Other:   make([]Inquiry, 0, len(b.Other)),
	}
	for i, col := range b.Columns {
		cards := make([]Inquiry, 0, len(col.Cards))
		for _, c := range col.Cards {
			if c.ID == id && !found {
				card, found = c, true
				continue
			}
			cards = append(cards, c)
		}
		next.Columns[i] = Column{Status: col.Status, Title: col.Title, Cards: cards}
	}
	for _, c := range b.Other {
		if c.ID == id && !found {
			card, found = c, true
			continue
		}
		next.Other = append(next.Other, c)
	}
	if !found {
		return b, Move{}, fmt.Errorf("card %q: %w", id, ErrNotFound)
	}

	move := Move{ID: id, From: card.Status, To: dest}
	card.Status = dest
	for i := range next.Columns {
		if next.Columns[i].Status == dest {
			next.Columns[i].Cards = append([]Inquiry{card}, next.Columns[i].Cards...)
			break
		}
	}
	return next, move, nil
}

// Column returns the cards of the column for s.
func (b Board) Column(s Status) []Inquiry {
	for _, c := range b.Columns {
		if c.Status == s {
			return c.Cards
		}
	}
	return nil
}
