package scenario

import "time"

func kph(v float64) *float64 { return &v }

// BuiltIn returns the predefined drives.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"highway-overtake": {
			Name:        "Highway overtake",
			Description: "Catch up with a slow truck on a three-lane motorway, pass it on the left and settle back.",
			Start:       Start{Lat: 37.4563, Lon: 126.7052, HeadingDeg: 45},
			Seed:        1,
			Noise:       0.5,
			Phases: []Phase{
				{
					Name: "merge", Description: "Join the motorway below the overtake speed.",
					Duration: 10 * time.Second, EgoKph: 50,
					LaneWidthLeft: 3.4, LaneWidthRight: 3.4, LaneCount: 3, RoadCategory: 0, LaneProb: 0.9,
					SpeedLimitKph: 100, RoadName: "Gyeongin Expressway",
				},
				{
					Name: "catch-up", Description: "Close on a truck doing 70 km/h.",
					Duration: 15 * time.Second, EgoKph: 95, LeadKph: kph(70), LeadGapM: 80,
					LaneWidthLeft: 3.5, LaneWidthRight: 3.3, LaneCount: 3, RoadCategory: 0, LaneProb: 0.92,
					SpeedLimitKph: 100, RoadName: "Gyeongin Expressway",
				},
				{
					Name: "blocked", Description: "A car sits in the left blind spot.",
					Duration: 5 * time.Second, EgoKph: 90, LeadKph: kph(70), LeadGapM: 40,
					LaneWidthLeft: 3.5, LaneWidthRight: 3.3, LaneCount: 3, RoadCategory: 0, LaneProb: 0.92,
					LeftBlindspot: true, SpeedLimitKph: 100, RoadName: "Gyeongin Expressway",
				},
				{
					Name: "pass", Description: "Lane change to the left.",
					Duration: 6 * time.Second, EgoKph: 100, LeadKph: kph(70), LeadGapM: 30,
					LaneWidthLeft: 3.5, LaneWidthRight: 3.3, LaneCount: 3, RoadCategory: 0, LaneProb: 0.9,
					LaneChange: "left", SpeedLimitKph: 100, RoadName: "Gyeongin Expressway",
				},
				{
					Name: "curve", Description: "Sweeping bend ahead of the exit.",
					Duration: 8 * time.Second, EgoKph: 90,
					LaneWidthLeft: 3.4, LaneWidthRight: 3.4, LaneCount: 3, RoadCategory: 0, LaneProb: 0.85,
					Curvature: 0.035, SpeedLimitKph: 90, RoadName: "Gyeongin Expressway",
					Command: "DETECT", CommandArg: "exit",
				},
			},
		},
		"city-traffic": {
			Name:        "City traffic",
			Description: "Stop-and-go urban driving where overtaking is never permitted.",
			Start:       Start{Lat: 37.5665, Lon: 126.978, HeadingDeg: 90},
			Seed:        2,
			Noise:       1,
			Phases: []Phase{
				{
					Name: "queue", Duration: 20 * time.Second, EgoKph: 25, LeadKph: kph(22), LeadGapM: 12,
					LaneWidthLeft: 2.6, LaneWidthRight: 2.9, LaneCount: 2, RoadCategory: 6, LaneProb: 0.6,
					SpeedLimitKph: 50, RoadName: "Sejong-daero",
				},
				{
					Name: "junction", Duration: 10 * time.Second, EgoKph: 40,
					LaneWidthLeft: 3.0, LaneWidthRight: 3.0, LaneCount: 4, RoadCategory: 6, LaneProb: 0.75,
					Curvature: -0.05, SpeedLimitKph: 50, RoadName: "Sejong-daero",
				},
			},
		},
	}
}
