package main

import (
	"context"
	"time"

	"envlogger-go/internal/acquire"
	"envlogger-go/internal/bringup"
	"envlogger-go/internal/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	log := logx.Println("envlogger")
	b, plan := board()

	h, err := bringup.Run(context.Background(), b, plan, logx.Println("bringup"))
	if err != nil {
		log.Error("bring-up failed", "err", err)
		park()
	}

	l := &acquire.Loop{
		Handles:   h,
		Period:    plan.Period,
		Construct: acquire.AHT20(),
		Log:       logx.Println("acquire"),
	}
	err = l.Run(context.Background())
	log.Error("acquisition stopped", "err", err)
	park()
}

// park idles forever; there is nothing to return to.
func park() {
	for {
		time.Sleep(time.Hour)
	}
}
