package safe

import (
	"collabhub/logger"
)

// Go starts a goroutine that recovers from panic so a faulty handler
// cannot take the whole hub down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}
