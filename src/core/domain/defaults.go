package domain

import "time"

// DefaultRoundDuration is the active window length used when none is configured.
const DefaultRoundDuration = 60 * time.Second

// DefaultCooldownDuration is the delay between creating a round and its start.
const DefaultCooldownDuration = 30 * time.Second
