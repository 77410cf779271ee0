package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"omibyte.io/regview/peripheral"
)

const sample = "../../svd/testdata/sample.svd"

func run(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "tim2.bin")
	if err := os.WriteFile(dump, make([]byte, 0x400), 0o644); err != nil {
		t.Fatal(err)
	}
	image := dump + "@0x40000000"

	if err := run("ranges", "--svd", sample, "TIM2"); err != nil {
		t.Errorf("ranges error = %v", err)
	}
	if err := run("ranges", "--svd", sample, "NOPE"); !errors.Is(err, peripheral.ErrNotFound) {
		t.Errorf("ranges error = %v, want %v", err, peripheral.ErrNotFound)
	}
	if err := run("read", "--svd", sample, "--image", image, "--format", "bin", "TIM2.CR1"); err != nil {
		t.Errorf("read error = %v", err)
	}
	if err := run("write", "--svd", sample, "--image", image, "TIM2.CR1.DIR", "Down"); err != nil {
		t.Errorf("write error = %v", err)
	}
	if err := run("write", "--svd", sample, "--image", image, "--reset", "TIM2.CNT"); err != nil {
		t.Errorf("write --reset error = %v", err)
	}
	if err := run("write", "--svd", sample, "--image", image, "--reset", "TIM2.CR1.DIR"); err == nil {
		t.Error("write --reset of a field succeeded")
	}
	writeReset = false

	if err := run("write", "--svd", sample, "--image", image, "TIM2.CR1.DIR", "Sideways"); !errors.Is(err, peripheral.ErrUnknownEnumeration) {
		t.Errorf("write error = %v, want %v", err, peripheral.ErrUnknownEnumeration)
	}
	if err := run("write", "--svd", sample, "--image", image, "GPIOA.IDR", "0x1"); !errors.Is(err, peripheral.ErrReadOnly) {
		t.Errorf("write error = %v, want %v", err, peripheral.ErrReadOnly)
	}
}

func TestStateAndGen(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "state.yaml")

	err := run("state", "save", "--svd", sample, "--state", state,
		"--pin", "TIM2.CR1", "--expand", "GPIOA", "--format", "GPIOA.MODER=bin")
	if err != nil {
		t.Fatalf("state save error = %v", err)
	}
	data, err := os.ReadFile(state)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"node: TIM2.CR1", "pinned: true", "node: GPIOA.MODER", "format: binary"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("state file misses %q:\n%s", want, data)
		}
	}
	if err := run("state", "show", "--svd", sample, "--state", state); err != nil {
		t.Errorf("state show error = %v", err)
	}

	out := filepath.Join(dir, "regs.go")
	if err := run("gen", "--svd", sample, "--pkg", "om32f1", "-o", out); err != nil {
		t.Fatalf("gen error = %v", err)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "package om32f1") {
		t.Errorf("generated file has no package clause:\n%s", src)
	}
}
