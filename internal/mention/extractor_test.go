package mention_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/mention"
)

type fakeDirectory struct {
	identities map[string]domain.Identity
	batchCalls int
	batchSizes []int
	err        error
}

func (f *fakeDirectory) ResolveByHandle(ctx context.Context, handle string) (*domain.Identity, error) {
	resolved, err := f.ResolveManyByHandles(ctx, []string{handle})
	if err != nil {
		return nil, err
	}
	if identity, ok := resolved[handle]; ok {
		return &identity, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeDirectory) ResolveManyByHandles(_ context.Context, handles []string) (map[string]domain.Identity, error) {
	f.batchCalls++
	f.batchSizes = append(f.batchSizes, len(handles))
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.Identity)
	for _, h := range handles {
		if identity, ok := f.identities[h]; ok {
			out[h] = identity
		}
	}
	return out, nil
}

func (f *fakeDirectory) ResolveByID(context.Context, string) (*domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) ResolveManyByIDs(context.Context, []string) (map[string]domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) SearchByPrefix(context.Context, string, int) ([]domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func newFakeDirectory(identities ...domain.Identity) *fakeDirectory {
	byHandle := make(map[string]domain.Identity, len(identities))
	for _, identity := range identities {
		byHandle[identity.Username] = identity
	}
	return &fakeDirectory{identities: byHandle}
}

func TestExtractOffsets(t *testing.T) {
	dir := newFakeDirectory(
		domain.Identity{ID: "s1", Role: domain.RoleStudent, Username: "alice"},
		domain.Identity{ID: "f1", Role: domain.RoleFaculty, Username: "prof.khan"},
	)
	extractor := mention.NewExtractor(dir)

	text := "water leak, ping @alice and @prof.khan please"
	mentions, err := extractor.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []domain.Mention{
		{IdentityID: "s1", Role: domain.RoleStudent, Username: "alice", Start: 17, End: 23},
		{IdentityID: "f1", Role: domain.RoleFaculty, Username: "prof.khan", Start: 28, End: 38},
	}
	if !reflect.DeepEqual(mentions, want) {
		t.Fatalf("mentions = %+v, want %+v", mentions, want)
	}
	for _, m := range want {
		if got := text[m.Start:m.End]; got != "@"+m.Username {
			t.Errorf("text[%d:%d] = %q, want %q", m.Start, m.End, got, "@"+m.Username)
		}
	}
}

func TestExtractBatchesUniqueHandles(t *testing.T) {
	dir := newFakeDirectory(domain.Identity{ID: "s1", Role: domain.RoleStudent, Username: "alice"})
	extractor := mention.NewExtractor(dir)

	mentions, err := extractor.Extract(context.Background(), "ping @alice and @alice again, also @missing_user")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if dir.batchCalls != 1 {
		t.Fatalf("directory batch calls = %d, want 1", dir.batchCalls)
	}
	if dir.batchSizes[0] != 2 {
		t.Fatalf("batch size = %d, want 2 unique handles", dir.batchSizes[0])
	}
	if len(mentions) != 2 {
		t.Fatalf("got %d mentions, want 2 occurrences of alice", len(mentions))
	}
	for _, m := range mentions {
		if m.Username != "alice" {
			t.Errorf("unexpected mention %+v", m)
		}
	}
}

func TestExtractUppercaseCanonicalized(t *testing.T) {
	dir := newFakeDirectory(domain.Identity{ID: "s1", Role: domain.RoleStudent, Username: "alice"})
	extractor := mention.NewExtractor(dir)

	text := "thanks @Alice!"
	mentions, err := extractor.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(mentions) != 1 {
		t.Fatalf("got %d mentions, want 1", len(mentions))
	}
	m := mentions[0]
	if m.Username != "alice" {
		t.Errorf("username = %q, want canonical %q", m.Username, "alice")
	}
	if text[m.Start:m.End] != "@Alice" {
		t.Errorf("span = %q, offsets must point at the literal text", text[m.Start:m.End])
	}
}

func TestExtractSkipsMalformedTokens(t *testing.T) {
	dir := newFakeDirectory(domain.Identity{ID: "s1", Role: domain.RoleStudent, Username: "alice"})
	extractor := mention.NewExtractor(dir)

	for _, text := range []string{
		"",
		"no mentions here",
		"@ab too short",
		"bare @ sign",
		"trailing @",
	} {
		mentions, err := extractor.Extract(context.Background(), text)
		if err != nil {
			t.Fatalf("Extract(%q): %v", text, err)
		}
		if len(mentions) != 0 {
			t.Errorf("Extract(%q) = %+v, want none", text, mentions)
		}
	}
}

func TestExtractHandleLengthCap(t *testing.T) {
	long := "a23456789012345678901234567890extra" // 30 chars then overflow
	dir := newFakeDirectory(domain.Identity{ID: "s1", Role: domain.RoleStudent, Username: long[:30]})
	extractor := mention.NewExtractor(dir)

	mentions, err := extractor.Extract(context.Background(), "@"+long)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(mentions) != 1 {
		t.Fatalf("got %d mentions, want 1", len(mentions))
	}
	if mentions[0].End != 31 {
		t.Errorf("end = %d, want token capped at 30 handle chars", mentions[0].End)
	}
}

func TestExtractIdempotent(t *testing.T) {
	dir := newFakeDirectory(
		domain.Identity{ID: "s1", Role: domain.RoleStudent, Username: "alice"},
		domain.Identity{ID: "s2", Role: domain.RoleStudent, Username: "bob_99"},
	)
	extractor := mention.NewExtractor(dir)
	text := "@alice then @bob_99 then @alice"

	first, err := extractor.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := extractor.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestExtractDirectoryError(t *testing.T) {
	dir := newFakeDirectory()
	dir.err = errors.New("pool exhausted")
	extractor := mention.NewExtractor(dir)

	if _, err := extractor.Extract(context.Background(), "@alice"); err == nil {
		t.Fatal("want error when the directory lookup fails")
	}
}
