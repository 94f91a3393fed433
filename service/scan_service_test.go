package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/serializer"
	"github.com/ludo-technologies/tsindex/internal/testutil"
)

func scanFixture(t *testing.T) string {
	t.Helper()
	return testutil.WriteTree(t, map[string]string{
		"api/a.ts":      "export const foo = 1;\n",
		"api/a.test.ts": "import { foo } from './a';\ntest('foo', () => {});\n",
		"ui/b.ts":       "import { foo } from '../api/a';\nconsole.log(foo);\n",
	})
}

func runScan(t *testing.T, req domain.ScanRequest) *domain.ScanResponse {
	t.Helper()
	resp, err := NewScanService().Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan() = %v", err)
	}
	return resp
}

func TestScanBuildsSnapshot(t *testing.T) {
	root := scanFixture(t)
	resp := runScan(t, domain.ScanRequest{
		Root:              root,
		IncludeExtensions: []string{".ts"},
	})
	snap := resp.Snapshot

	if snap.FileCount() != 3 {
		t.Fatalf("FileCount() = %d, want 3", snap.FileCount())
	}
	if resp.Summary.FilesScanned != 3 || resp.Summary.FilesParsed != 3 || resp.Summary.FilesPartial != 0 {
		t.Errorf("Summary = %+v", resp.Summary)
	}

	var fooExports, fooImports int
	for _, e := range snap.Exports {
		if e.Path == "api/a.ts" && e.Symbol == "foo" {
			fooExports++
		}
	}
	for _, imp := range snap.Imports {
		if imp.Path == "ui/b.ts" && imp.Symbol == "foo" {
			fooImports++
		}
	}
	if fooExports != 1 {
		t.Errorf("foo export count = %d, want 1", fooExports)
	}
	if fooImports != 1 {
		t.Errorf("foo import count in ui/b.ts = %d, want 1", fooImports)
	}

	for _, f := range snap.Files {
		if f.Path == "api/a.ts" && !f.HasTests {
			t.Error("api/a.ts has a sibling test file and must be marked has_tests")
		}
	}
}

func TestScanDeterministic(t *testing.T) {
	root := scanFixture(t)
	req := domain.ScanRequest{Root: root, IncludeExtensions: []string{".ts"}, Workers: 4}

	first := runScan(t, req).Snapshot
	second := runScan(t, req).Snapshot

	// Only the generation time may differ between identical scans.
	second.GeneratedAt = first.GeneratedAt

	var a, b bytes.Buffer
	if err := serializer.New().Write(&a, first); err != nil {
		t.Fatal(err)
	}
	if err := serializer.New().Write(&b, second); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two scans of an unchanged tree must serialize identically")
	}
}

func TestScanKeepsUnparsableFiles(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"src/good.ts":   "export const g = 1;\n",
		"src/broken.ts": "function {{{\n",
	})

	resp := runScan(t, domain.ScanRequest{Root: root, IncludeExtensions: []string{".ts"}})

	if resp.Snapshot.FileCount() != 2 {
		t.Fatalf("FileCount() = %d, want 2 (failures stay in the index)", resp.Snapshot.FileCount())
	}
	if resp.Summary.FilesPartial != 1 {
		t.Errorf("FilesPartial = %d, want 1", resp.Summary.FilesPartial)
	}
	if len(resp.Summary.FailedPaths) != 1 || resp.Summary.FailedPaths[0] != "src/broken.ts" {
		t.Errorf("FailedPaths = %v", resp.Summary.FailedPaths)
	}
	if !resp.Snapshot.IsIncomplete("src/broken.ts") {
		t.Error("src/broken.ts should carry an error record")
	}
}

func TestScanBadRootIsFatal(t *testing.T) {
	_, err := NewScanService().Scan(context.Background(), domain.ScanRequest{
		Root:              "/nonexistent/tsindex-test-root",
		IncludeExtensions: []string{".ts"},
	})
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Scan() = %v, want *domain.ConfigError", err)
	}
}

func TestScanCancellation(t *testing.T) {
	root := scanFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanService().Scan(ctx, domain.ScanRequest{
		Root:              root,
		IncludeExtensions: []string{".ts"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan(cancelled ctx) = %v, want context.Canceled", err)
	}
}

func TestScanResponseMetadata(t *testing.T) {
	root := scanFixture(t)
	resp := runScan(t, domain.ScanRequest{Root: root, IncludeExtensions: []string{".ts"}})

	if resp.Version == "" {
		t.Error("Version must be set")
	}
	if _, err := time.Parse(time.RFC3339, resp.GeneratedAt); err != nil {
		t.Errorf("GeneratedAt %q is not RFC3339: %v", resp.GeneratedAt, err)
	}
	if resp.Snapshot.Root != root {
		t.Errorf("Snapshot.Root = %q, want %q", resp.Snapshot.Root, root)
	}
}
