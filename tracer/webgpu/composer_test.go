package webgpu

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Pascu-Victor/path-tracer/log"
)

const checkerShader = `
fn checker(data: SurfaceShaderData) -> SurfaceShaderResult {
    var result: SurfaceShaderResult;
    result.color = data.baseColor;
    result.applied = true;
    return result;
}
`

const stripesShader = `
fn stripePhase(p: f32) -> f32 {
    return fract(p * 4.0);
}

fn stripes(data: SurfaceShaderData) -> SurfaceShaderResult {
    var result: SurfaceShaderResult;
    result.color = data.baseColor * stripePhase(data.position.x);
    result.applied = true;
    return result;
}
`

func writeShader(t *testing.T, dir, name, code string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(code), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestComposeKernelAssignsSortedIndices(t *testing.T) {
	dir := t.TempDir()
	// Written out of order; composition must sort by filename.
	writeShader(t, dir, "b_stripes.wgsl", stripesShader)
	writeShader(t, dir, "a_checker.wgsl", checkerShader)

	ck, err := ComposeKernel(dir, log.New("test"))
	if err != nil {
		t.Fatal(err)
	}

	if got := ck.Index["checker"]; got != 1 {
		t.Fatalf("expected checker to get index 1; got %d", got)
	}
	if got := ck.Index["stripes"]; got != 2 {
		t.Fatalf("expected stripes to get index 2; got %d", got)
	}

	for _, want := range []string{
		"fn checker(data: SurfaceShaderData)",
		"fn stripes(data: SurfaceShaderData)",
		"if (shaderFunctionIndex == 1) {",
		"shaderResult = checker(shaderData);",
		"shaderResult = stripes(shaderData);",
		"sphereShaderResult = checker(sphereShaderData);",
	} {
		if !strings.Contains(ck.Source, want) {
			t.Fatalf("expected composed source to contain %q", want)
		}
	}
}

func TestComposeKernelChainsDispatchBranches(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "a.wgsl", checkerShader)
	writeShader(t, dir, "b.wgsl", stripesShader)

	ck, err := ComposeKernel(dir, log.New("test"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(ck.Source, "} else if (shaderFunctionIndex == 2) {") {
		t.Fatal("expected dispatch branches to chain with else")
	}
}

func TestComposeKernelMissingDirectory(t *testing.T) {
	ck, err := ComposeKernel("/no/such/dir", log.New("test"))
	if err != nil {
		t.Fatal(err)
	}

	if len(ck.Index) != 0 {
		t.Fatalf("expected empty shader index; got %d entries", len(ck.Index))
	}
	if strings.Contains(ck.Source, "PLACEHOLDER") {
		t.Fatal("expected placeholder markers to be consumed")
	}
}

func TestComposeKernelDuplicateEntryFails(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "a.wgsl", checkerShader)
	writeShader(t, dir, "b.wgsl", checkerShader)

	if _, err := ComposeKernel(dir, log.New("test")); err == nil {
		t.Fatal("expected duplicate shader entry to fail composition")
	}
}

func TestComposeKernelRejectsFragmentWithoutEntry(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "a.wgsl", "fn helper(x: f32) -> f32 { return x; }")

	if _, err := ComposeKernel(dir, log.New("test")); err == nil {
		t.Fatal("expected fragment without an entry function to fail composition")
	}
}

func TestShaderEntryNameSkipsHelpers(t *testing.T) {
	name, err := shaderEntryName(stripesShader)
	if err != nil {
		t.Fatal(err)
	}
	if name != "stripes" {
		t.Fatalf("expected entry name stripes; got %q", name)
	}
}
