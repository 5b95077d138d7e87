package main

import (
	"log"
	"os"

	"drivelink/internal/config"
	"drivelink/internal/dashboard"
)

func main() {
	cfg, err := config.Load(os.Getenv("DRIVELINK_CONFIG"), "")
	if err != nil {
		log.Fatal(err)
	}
	tables := dashboard.Tables{Verdict: cfg.Greptime.VerdictTable, Stats: cfg.Greptime.StatsTable}
	if err := dashboard.Render("build", tables); err != nil {
		log.Fatal(err)
	}
}
