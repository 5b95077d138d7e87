package telemetry

// NavigationFields is the outbound navigation packet candidate. JSON names
// follow the receiving navigation bridge.
type NavigationFields struct {
	RoadLimitSpeed int     `json:"nRoadLimitSpeed"`
	TBTDist        int     `json:"nTBTDist"`
	TBTTurnType    int     `json:"nTBTTurnType"`
	SdiDist        int     `json:"nSdiDist"`
	SdiType        int     `json:"nSdiType"`
	SdiSpeedLimit  int     `json:"nSdiSpeedLimit"`
	TrafficState   int     `json:"traffic_state"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	GPSSpeed       float64 `json:"gps_speed"` // m/s
	Command        string  `json:"carrotCmd"`
	CommandArg     string  `json:"carrotArg"`
	Navigating     bool    `json:"isNavigating"`

	GoalName     string `json:"szGoalName,omitempty"`
	TBTMainText  string `json:"szTBTMainText,omitempty"`
	NearDirName  string `json:"szNearDirName,omitempty"`
	FarDirName   string `json:"szFarDirName,omitempty"`
	PosRoadName  string `json:"szPosRoadName,omitempty"`
	RoadCategory int    `json:"roadcate"`
	LaneCount    int    `json:"nLaneCount"`
}
