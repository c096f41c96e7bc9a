package rewrite

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"twfold/internal/diag"
	"twfold/internal/source"
)

// run rewrites src as a virtual .tsx file with the default config and
// returns the output text plus the collected diagnostics.
func run(t *testing.T, src string) (string, *diag.Bag) {
	t.Helper()
	return runCfg(t, src, DefaultConfig())
}

func runCfg(t *testing.T, src string, cfg Config) (string, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.tsx", []byte(src))
	bag := diag.NewBag(64)

	res, err := Rewrite(context.Background(), fs.Get(id), cfg, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if res == nil {
		return src, bag
	}
	return string(res.Text), bag
}

func TestFoldsBaseWithVariant(t *testing.T) {
	// Scenario A.
	out, bag := run(t, `const c = tw("text-base", { md: "text-lg" });`)
	want := `const c = "text-base md:text-lg";`
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestFoldsMultiTokenVariants(t *testing.T) {
	// Scenario B.
	out, _ := run(t, `tw("flex items-center", { md: "justify-between gap-4", lg: "gap-6 p-8" })`)
	want := `"flex items-center md:justify-between md:gap-4 lg:gap-6 lg:p-8"`
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
}

func TestFoldsBaseOnly(t *testing.T) {
	// Scenario C.
	out, bag := run(t, `tw("bg-blue-500 text-white")`)
	if out != `"bg-blue-500 text-white"` {
		t.Errorf("got %s", out)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestDynamicBaseLeftUntouched(t *testing.T) {
	// Scenario D.
	src := `const c = tw(someVariable, { md: "x" });`
	out, bag := run(t, src)
	if out != src {
		t.Errorf("call must stay verbatim, got %s", out)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.InvalidBaseClasses {
		t.Fatalf("want one invalid-base-classes warning, got %+v", bag.Items())
	}
	if bag.Items()[0].Severity != diag.SevWarning {
		t.Error("advisory diagnostics must be warnings")
	}
}

func TestUnknownVariantDropped(t *testing.T) {
	// Scenario E.
	out, bag := run(t, `tw("base", { xxl: "y" })`)
	if out != `"base"` {
		t.Errorf("got %s", out)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.UnknownVariant {
		t.Fatalf("want one unknown-variant warning, got %+v", bag.Items())
	}
	msg := bag.Items()[0].Message
	if !strings.Contains(msg, `"xxl"`) || !strings.Contains(msg, "sm, md, lg, xl, 2xl") {
		t.Errorf("warning must name the value and the allowed set: %q", msg)
	}
}

func TestParseFailureIsFatal(t *testing.T) {
	// Scenario F.
	fs := source.NewFileSet()
	id := fs.AddVirtual("broken.ts", []byte("const x = (;"))
	bag := diag.NewBag(16)

	res, err := Rewrite(context.Background(), fs.Get(id), DefaultConfig(), diag.BagReporter{Bag: bag})
	if err == nil {
		t.Fatal("expected error")
	}
	if res != nil {
		t.Fatal("no partial edits may be applied")
	}
	fatals := 0
	for _, d := range bag.Items() {
		if d.Code == diag.ParseFailed && d.Severity == diag.SevError {
			fatals++
		}
	}
	if fatals != 1 {
		t.Fatalf("reportFatal must be called exactly once, got %d", fatals)
	}
}

func TestMissingArguments(t *testing.T) {
	src := `tw()`
	out, bag := run(t, src)
	if out != src {
		t.Errorf("got %s", out)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.MissingArguments {
		t.Fatalf("want missing-arguments, got %+v", bag.Items())
	}
}

func TestNoOpWithoutTargetCalls(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("plain.ts", []byte(`const style = clsx("a", "b"); tww("c");`))
	res, err := Rewrite(context.Background(), fs.Get(id), DefaultConfig(), diag.NopReporter{})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatal("input without target calls must be a no-op")
	}
}

func TestMethodCallsDoNotMatch(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.ts", []byte(`styles.tw("a"); obj["tw"]("b");`))
	res, err := Rewrite(context.Background(), fs.Get(id), DefaultConfig(), diag.NopReporter{})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatal("only bare-identifier callees match the target pattern")
	}
}

func TestIdempotence(t *testing.T) {
	first, _ := run(t, `const a = tw("p-1", { md: "p-2" }); const b = tw("m-1");`)

	fs := source.NewFileSet()
	id := fs.AddVirtual("again.tsx", []byte(first))
	res, err := Rewrite(context.Background(), fs.Get(id), DefaultConfig(), diag.NopReporter{})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatalf("second run must be a no-op, produced %q", res.Text)
	}
}

func TestPurity(t *testing.T) {
	src := `tw("a", { md: "b", bogus: "c" }); tw(dyn);`
	out1, bag1 := run(t, src)
	out2, bag2 := run(t, src)
	if out1 != out2 {
		t.Fatal("output differs between identical invocations")
	}
	if bag1.Len() != bag2.Len() {
		t.Fatal("diagnostic sequence differs between identical invocations")
	}
	for i := range bag1.Items() {
		a, b := bag1.Items()[i], bag2.Items()[i]
		if a.Code != b.Code || a.Message != b.Message || a.Primary != b.Primary {
			t.Fatalf("diagnostic %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestVariantOrderFollowsDeclaration(t *testing.T) {
	// Declaration order wins even against the allowed set's own order.
	cfg := Config{TargetName: "tw", AllowedVariants: []string{"lg", "md"}}
	out, _ := runCfg(t, `tw("base", { md: "m", lg: "l" })`, cfg)
	if out != `"base md:m lg:l"` {
		t.Errorf("got %s", out)
	}
}

func TestVariantValueTrimsToEmptySilently(t *testing.T) {
	out, bag := run(t, `tw("base", { md: "   ", lg: "x" })`)
	if out != `"base lg:x"` {
		t.Errorf("got %s", out)
	}
	if bag.Len() != 0 {
		t.Errorf("empty-after-trim values are a silent skip, got %+v", bag.Items())
	}
}

func TestBaseIsTrimmed(t *testing.T) {
	out, _ := run(t, `tw("  p-2  ")`)
	if out != `"p-2"` {
		t.Errorf("got %s", out)
	}
}

func TestEmptyBaseComposesVariantsOnly(t *testing.T) {
	out, _ := run(t, `tw("", { md: "x" })`)
	if out != `"md:x"` {
		t.Errorf("got %s", out)
	}
}

func TestTemplateBase(t *testing.T) {
	out, _ := run(t, "tw(`p-1 m-1`, { sm: `p-2` })")
	if out != `"p-1 m-1 sm:p-2"` {
		t.Errorf("got %s", out)
	}
}

func TestInterpolatedTemplateBaseIsRejected(t *testing.T) {
	src := "tw(`p-${n}`)"
	out, bag := run(t, src)
	if out != src {
		t.Errorf("got %s", out)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.InvalidBaseClasses {
		t.Fatalf("got %+v", bag.Items())
	}
}

func TestNonStaticMappingEntriesSilentlySkipped(t *testing.T) {
	out, bag := run(t, `tw("base", { md: dyn, ...rest, lg: "x" })`)
	if out != `"base lg:x"` {
		t.Errorf("got %s", out)
	}
	if bag.Len() != 0 {
		t.Errorf("non-static entries are a silent skip, got %+v", bag.Items())
	}
}

func TestNestedCallInMalformedBase(t *testing.T) {
	// The outer call has a dynamic base, so only the inner call is folded.
	out, bag := run(t, `tw(cond ? a : b, { md: tw("inner") })`)
	if !strings.Contains(out, `"inner"`) || strings.Contains(out, `tw("inner")`) {
		t.Errorf("inner call must be folded independently: %s", out)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.InvalidBaseClasses {
			found = true
		}
	}
	if !found {
		t.Error("outer call must warn about its dynamic base")
	}
}

func TestJSXAttributeCall(t *testing.T) {
	out, _ := run(t, `const el = <div className={tw("flex", { md: "grid" })} />;`)
	want := `const el = <div className={"flex md:grid"} />;`
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
}

func TestMultipleCallsKeepPositions(t *testing.T) {
	out, _ := run(t, "const a = tw(\"x\");\nconst keep = 1;\nconst b = tw(\"y\", { md: \"z\" });\n")
	want := "const a = \"x\";\nconst keep = 1;\nconst b = \"y md:z\";\n"
	if out != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}
}

func TestCustomTargetName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetName = "styled"
	out, _ := runCfg(t, `styled("a"); tw("b");`, cfg)
	if out != `"a"; tw("b");` {
		t.Errorf("got %s", out)
	}
}

func TestPartialConfigGetsDefaultVariants(t *testing.T) {
	// A caller setting only the target name still gets the conventional
	// breakpoint set, not an empty allowed list.
	out, bag := runCfg(t, `const c = tw("a", { md: "x" });`, Config{TargetName: "tw"})
	if want := `const c = "a md:x";`; out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestEmptyVariantSetRejectsEveryVariant(t *testing.T) {
	cfg := Config{TargetName: "tw", AllowedVariants: []string{}}
	out, bag := runCfg(t, `const c = tw("a", { md: "x" });`, cfg)
	if want := `const c = "a";`; out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.UnknownVariant {
		t.Errorf("diagnostics = %+v", bag.Items())
	}
}

func TestQuoteEscapingSurvivesRoundTrip(t *testing.T) {
	out, _ := run(t, `tw('content-["a"]')`)
	if out != `"content-[\"a\"]"` {
		t.Errorf("got %s", out)
	}
}

func TestClipKeepsValidUTF8(t *testing.T) {
	cases := []struct {
		in  string
		max int
	}{
		{"日本語テキスト", 4},
		{"日本語テキスト", 5},
		{"abc日本", 4},
		{"plain ascii text here", 7},
	}
	for _, tc := range cases {
		got := clip(tc.in, tc.max)
		if !utf8.ValidString(got) {
			t.Errorf("clip(%q, %d) = %q is not valid UTF-8", tc.in, tc.max, got)
		}
		if len(got) > tc.max+len("...") {
			t.Errorf("clip(%q, %d) = %q exceeds the limit", tc.in, tc.max, got)
		}
	}
	if got := clip("short", 20); got != "short" {
		t.Errorf("clip must not touch strings under the limit: %q", got)
	}
}

func TestResultReportsFoldCount(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("count.ts", []byte(`tw("a"); tw("b"); tw(dyn);`))
	bag := diag.NewBag(16)
	res, err := Rewrite(context.Background(), fs.Get(id), DefaultConfig(), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Folded != 2 {
		t.Fatalf("Folded = %+v, want 2", res)
	}
}
