package common

import (
	"errors"
	"fmt"

	"x-lotto/logger"
)

func NewErrorf(format string, a ...any) error {
	return errors.New(fmt.Sprintf(format, a...))
}

func NewError(a ...any) error {
	return errors.New(fmt.Sprint(a...))
}

// Recover 用于 goroutine 顶层，记录 panic 而不是让整个进程退出。
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}

// Combine joins the non-nil errors; nil when all are nil.
func Combine(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return errors.Join(kept...)
}
