package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	perr "evidencegate/internal/platform/errors"
)

// fakeQuerier serves canned rows without a database
type fakeQuerier struct {
	data     [][]any
	queryErr error
	rowVals  []any
	rowErr   error
	affected int64
	execs    int
}

type fakeTag int64

func (t fakeTag) String() string      { return fmt.Sprintf("UPDATE %d", int64(t)) }
func (t fakeTag) RowsAffected() int64 { return int64(t) }

func (f *fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	f.execs++
	return fakeTag(f.affected), nil
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{data: f.data, idx: -1}, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row {
	return fakeRow{vals: f.rowVals, err: f.rowErr}
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dst ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.vals, dst)
}

type fakeRows struct {
	data   [][]any
	idx    int
	closed bool
}

func (r *fakeRows) Next() bool            { r.idx++; return r.idx < len(r.data) }
func (r *fakeRows) Scan(dst ...any) error { return assign(r.data[r.idx], dst) }
func (r *fakeRows) Err() error            { return nil }
func (r *fakeRows) Close()                { r.closed = true }

func assign(vals []any, dst []any) error {
	if len(vals) != len(dst) {
		return errors.New("arity mismatch")
	}
	for i, v := range vals {
		switch d := dst[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		default:
			return fmt.Errorf("unsupported dest %T", d)
		}
	}
	return nil
}

type seal struct {
	ID   string
	Hash string
}

func scanSeal(r Row) (seal, error) {
	var s seal
	return s, r.Scan(&s.ID, &s.Hash)
}

func TestOne(t *testing.T) {
	ctx := context.Background()

	got, err := One(ctx, &fakeQuerier{data: [][]any{{"ev-1", "ab"}}}, scanSeal, "SELECT")
	if err != nil || got.ID != "ev-1" {
		t.Fatalf("one = %+v %v", got, err)
	}

	_, err = One(ctx, &fakeQuerier{}, scanSeal, "SELECT")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("empty = %v", err)
	}

	_, err = One(ctx, &fakeQuerier{data: [][]any{{"a", "1"}, {"b", "2"}}}, scanSeal, "SELECT")
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("two rows = %v", err)
	}

	boom := errors.New("boom")
	if _, err = One(ctx, &fakeQuerier{queryErr: boom}, scanSeal, "SELECT"); !errors.Is(err, boom) {
		t.Fatalf("query err = %v", err)
	}
}

func TestMany(t *testing.T) {
	got, err := Many(context.Background(), &fakeQuerier{data: [][]any{{"a", "1"}, {"b", "2"}}}, scanSeal, "SELECT")
	if err != nil || len(got) != 2 || got[1].ID != "b" {
		t.Fatalf("many = %+v %v", got, err)
	}
	got, err = Many(context.Background(), &fakeQuerier{}, scanSeal, "SELECT")
	if err != nil || got != nil {
		t.Fatalf("empty many = %+v %v", got, err)
	}
}

func TestExecAffected(t *testing.T) {
	n, err := ExecAffected(context.Background(), &fakeQuerier{affected: 3}, "UPDATE")
	if err != nil || n != 3 {
		t.Fatalf("affected = %d %v", n, err)
	}
}
