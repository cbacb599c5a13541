// Package module looks up ports across mounted modules
package module

import modkit "reviewguard/internal/modkit"

// Module is the modkit module contract
type Module = modkit.Module
