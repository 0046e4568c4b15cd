package services

import (
	"log"
	"time"

	"institute-admin/app/payments"
)

// Idle staging sessions hold balance snapshots and staged lines in memory;
// the scheduler sweeps them so abandoned sessions do not accumulate.
const sessionMaxIdle = 30 * time.Minute

// StartScheduler starts the background task scheduler
func StartScheduler(sessions *payments.SessionRegistry) {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if dropped := sessions.ExpireIdle(sessionMaxIdle); dropped > 0 {
				log.Printf("Expired %d idle payment staging sessions", dropped)
			}
		}
	}()
}
