package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"analytica-hq/meridian/pkg/rules"
)

const validCatalogue = `
version: "1"
name: test-policy
rules:
  - id: R_DTI
    name: DTI Cap
    severity: HIGH
    action: REJECT
    when:
      feature: ratio.dti
      op: lte
      value: 0.5
`

const invalidCatalogue = `
version: "1"
name: broken
rules:
  - id: R_BAD
    name: Bad Operator
    severity: HIGH
    action: REJECT
    when:
      feature: ratio.dti
      op: wat
      value: 0.5
`

func writeCatalogue(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalogue: %v", err)
	}
	return path
}

func TestNewProvider_InitialLoad(t *testing.T) {
	p, err := NewProvider(NewMemorySource(rules.DefaultRuleSet()), false, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	defer p.Close()

	if p.Current().Len() == 0 {
		t.Error("expected catalogue to be loaded")
	}
}

func TestNewProvider_InitialLoadFailure(t *testing.T) {
	_, err := NewProvider(NewMemorySource(&rules.RuleSet{Name: "empty"}), false, nil)
	if err == nil {
		t.Fatal("expected construction to fail on an invalid initial catalogue")
	}
}

func TestNewProvider_NilSource(t *testing.T) {
	if _, err := NewProvider(nil, false, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestProvider_FailedReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogue(t, dir, "policy.yaml", validCatalogue)

	p, err := NewProvider(NewFileSource(path, nil), false, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	defer p.Close()

	before := p.Current()

	writeCatalogue(t, dir, "policy.yaml", invalidCatalogue)
	if err := p.Reload(context.Background()); err == nil {
		t.Fatal("expected reload of an invalid catalogue to fail")
	}

	if p.Current() != before {
		t.Error("failed reload must leave the previous catalogue in effect")
	}
}

func TestProvider_ReloadSwapsCatalogue(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogue(t, dir, "policy.yaml", validCatalogue)

	p, err := NewProvider(NewFileSource(path, nil), false, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	defer p.Close()

	updated := validCatalogue + `
  - id: R_AGE
    name: Age Window
    severity: HIGH
    action: REJECT
    when:
      feature: applicant.age
      op: between
      min: 21
      max: 65
`
	writeCatalogue(t, dir, "policy.yaml", updated)
	if err := p.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if got := p.Current().Len(); got != 2 {
		t.Errorf("rule count after reload = %d, want 2", got)
	}
}

func TestProvider_OnReloadHook(t *testing.T) {
	p, err := NewProvider(NewMemorySource(rules.DefaultRuleSet()), false, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	defer p.Close()

	var calls int
	p.OnReload(func() { calls++ })

	if err := p.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if err := p.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("hook called %d times, want 2", calls)
	}
}

func TestFileSource_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCatalogue(t, dir, "a.yaml", validCatalogue)
	writeCatalogue(t, dir, "b.yml", `
name: extra
rules:
  - id: R_TERM
    name: Term Cap
    severity: MEDIUM
    action: FLAG
    when:
      feature: loan.term_months
      op: lte
      value: 60
`)
	writeCatalogue(t, dir, "notes.txt", "ignored")

	rs, err := NewFileSource(dir, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rs.Len() != 2 {
		t.Errorf("merged %d rules, want 2", rs.Len())
	}
}

func TestFileSource_LoadMissingPath(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing catalogue path")
	}
}
