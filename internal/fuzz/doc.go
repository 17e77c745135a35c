// Package fuzztests houses Go fuzz harnesses that exercise the front of
// the analysis pipeline (source -> scanner -> parser). Its goal is to
// smoke test robustness and guard against panics, hangs and span
// corruption on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через сканер и
// парсер, проверяя инварианты спанов на каждом удачном разборе.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/syntax, internal/diag,
// internal/testkit.
package fuzztests
