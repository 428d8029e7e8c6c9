package asset

// DefaultConfig is the embedded TOML configuration used when no config file is given
// A user file is merged over it, so partial files only need the keys they change
const DefaultConfig = `
target_bundle = "asset/targets.mind"
collect_policy = "timeout"
auto_collect = true

[timing]
dwell = "2s"
lid_open = "3s"
lid_close = "1.5s"
arrow_spin = "3.5s"
spin_turns = 6
reveal_progress = 0.5
collect_timeout = "5s"

[particles]
count = 30
gravity = 0.008
flicker_rate = 10.0

[camera]
device = ""

[audio]
enabled = true
volume = 0.8

[log]
level = "info"
dir = "logs"

[model]
scale = 0.5

# --- Clue markers: arrow spins and settles on final_angle (radians) ---

[[markers]]
id = 0
kind = "clue"
name = "Marker 0"
description = "Image 1"
final_angle = 0.0

[[markers]]
id = 1
kind = "clue"
name = "Marker 1"
description = "Image 2"
final_angle = 1.5707963267948966

[[markers]]
id = 2
kind = "clue"
name = "Marker 2"
description = "Image 3"
final_angle = 3.141592653589793

[[markers]]
id = 3
kind = "clue"
name = "Marker 3"
description = "Image 4"
final_angle = 4.71238898038469

[[markers]]
id = 4
kind = "clue"
name = "Marker 4"
description = "Image 5"
final_angle = 0.7853981633974483

[[markers]]
id = 5
kind = "clue"
name = "Marker 5"
description = "Image 6"
final_angle = 2.356194490192345

[[markers]]
id = 6
kind = "clue"
name = "Marker 6"
description = "Image 7"
final_angle = 3.9269908169872414

[[markers]]
id = 7
kind = "clue"
name = "Marker 7"
description = "Image 8"
final_angle = 5.497787143782138

# --- Treasure markers: chest opens, particles celebrate, points are awarded ---

[[markers]]
id = 8
kind = "treasure"
name = "Marker 8"
description = "Image 9"
points = 50
reward = "Silver coins"

[[markers]]
id = 9
kind = "treasure"
name = "Marker 9"
description = "Image 10"
points = 75
reward = "Pearl"

[[markers]]
id = 10
kind = "treasure"
name = "Marker 10"
description = "Image 11"
points = 100
reward = "Gold coins"

[[markers]]
id = 11
kind = "treasure"
name = "Marker 11"
description = "Image 12"
points = 250
reward = "Ruby"

[[markers]]
id = 12
kind = "treasure"
name = "Marker 12"
description = "Image 13"
points = 500
reward = "Crown"
model = "asset/models/chest.gltf"
`
