// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// bannerLarge is shown when the terminal is wide enough.
const bannerLarge = `
                          ░██
                          ░██
░██░████░██████  ░████████░████████ ░██    ░██
░███         ░██░██    ░██░██    ░██░██    ░██
░██     ░███████░██    ░██░██    ░██░██    ░██
░██    ░██   ░██░██   ░███░██    ░██░██   ░███
░██     ░█████░██░█████░██░██    ░██ ░█████░██
                       ░██
                 ░███████`

const bannerSmall = `
                  ░█
                  ░█
░█░███░███  ░█████░█████ ░█   ░█
░██      ░█░█   ░█░█   ░█░█   ░█
░█    ░████░█   ░█░█   ░█░█   ░█
░█   ░█  ░█░█  ░██░█   ░█░█  ░██
░█    ░███░█░███░█░█   ░█ ░███░█
                ░█
             ░███`
