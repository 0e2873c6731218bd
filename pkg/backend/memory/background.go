package memory

import (
	"log"
	"time"
)

// StartBackgroundWorkers starts the periodic snapshot worker when background
// saves are enabled and a data file is configured.
func (e *Engine) StartBackgroundWorkers() {
	if !e.backgroundSave || e.dataFile == "" {
		return
	}

	e.backgroundWg.Add(1)
	go func() {
		defer e.backgroundWg.Done()
		ticker := time.NewTicker(e.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !e.anyDirty() {
					continue
				}
				start := time.Now()
				if err := e.SaveToFile(e.dataFile); err != nil {
					log.Printf("ERROR: Background save failed: %v", err)
				} else {
					log.Printf("INFO: Background save completed in %v", time.Since(start))
				}
			case <-e.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers and waits for them to exit.
func (e *Engine) StopBackgroundWorkers() {
	select {
	case <-e.stopChan:
		// Already closed
	default:
		close(e.stopChan)
	}
	e.backgroundWg.Wait()
}
