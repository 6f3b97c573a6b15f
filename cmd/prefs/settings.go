package main

// gameSettings is the settings struct managed by the tool.
type gameSettings struct {
	PlayerName    string  `prefs:"PlayerName"`
	MovementSpeed float32 `prefs:"MovementSpeed"`
	Volume        int     `prefs:"Volume"`
	Fullscreen    bool    `prefs:"Fullscreen"`
}

func gameDefaults(s *gameSettings) {
	s.PlayerName = "Player"
	s.MovementSpeed = 200
	s.Volume = 80
}
