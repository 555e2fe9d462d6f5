package token

import "github.com/edwingeng/deque"

// Queue is a Source over tokens that were produced ahead of time.
// After the queued tokens run out it returns EOF forever.
type Queue struct {
	tokens deque.Deque
	end    int
}

func NewQueue(toks ...Token) *Queue {
	q := &Queue{tokens: deque.NewDeque()}
	for _, t := range toks {
		q.Push(t)
	}

	return q
}

func (q *Queue) Push(t Token) {
	q.tokens.PushBack(t)
	q.end = t.Pos + len(t.Literal)
}

func (q *Queue) Len() int {
	return q.tokens.Len()
}

func (q *Queue) NextToken() (Token, error) {
	if q.tokens.Empty() {
		return Token{Type: EOF, Pos: q.end}, nil
	}

	tok := q.tokens.Front().(Token)
	q.tokens.PopFront()

	return tok, nil
}
