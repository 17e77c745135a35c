package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addLanguageSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.ag файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".ag" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

// addLanguageSeeds covers the surface of the language: well-formed
// modules plus the malformed shapes the parser recovers from.
func addLanguageSeeds(f *testing.F) {
	seeds := []string{
		"",
		"module app/main exposing (main)\n\nmain = 1\n",
		"module app/lib exposing (..)\n\nimport app/util as u exposing (helper)\n\nvalue = u.helper 3\n",
		"module a exposing (f, g)\n\nf x = x\n\ng = \\x -> f x\n",
		"module a exposing (v)\n\nv = let x = 1 in if x then 2 else 3\n",
		"module a exposing (s)\n\ns = \"hi \\\"there\\\"\\n\"\n",
		"module a exposing (l)\n\n-- список с хвостом\nl = [1, 2.5, f 3]\n",
		"module a exposing (c)\n\n{- block {- nested -} comment -}\nc = 1\n",

		// сломанные шапки и восстановление
		"main = 1\n",
		"module exposing (x)\n",
		"module a.b exposing (x)\n",
		"module a exposing main\n",
		"module a exposing (x)\nimport \nvalue = 1\n",

		// обрывы на границе токена
		"module a exposing (x)\n\nv = \"unterminated\n",
		"module a exposing (x)\n\nv = {- no end\n",
		"module a exposing (x)\n\nv = (1, \n",
		"module a exposing (x",

		// нормализация входа
		"\ufeffmodule a exposing (x)\r\n\r\nx = 1\r\n",
		"module a exposing (x)\n\nx = \"юникод\"\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		return append([]byte(nil), src[:maxSeedBytes]...)
	}
	return append([]byte(nil), src...)
}
