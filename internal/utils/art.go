package utils

var PaperSortArt = `
______                       _____            _
| ___ \                     /  ___|          | |
| |_/ /_ _ _ __   ___ _ __  \ ` + "`" + `--.  ___  _ __| |_
|  __/ _` + "`" + ` | '_ \ / _ \ '__|  ` + "`" + `--. \/ _ \| '__| __|
| | | (_| | |_) |  __/ |    /\__/ / (_) | |  | |_
\_|  \__,_| .__/ \___|_|    \____/ \___/|_|   \__|
          | |
          |_|`
