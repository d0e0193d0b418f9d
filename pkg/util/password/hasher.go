package password

// Hasher hashes with the parameters from configuration. Verification reads
// the parameters encoded in each hash, so older hashes keep working after a
// parameter change and are reported by NeedsRehash.
type Hasher struct {
	params *Params
}

// NewHasher falls back to the defaults when cfg carries no memory setting.
func NewHasher(cfg Config) *Hasher {
	if cfg.MemoryKiB == 0 || cfg.Iterations == 0 || cfg.Parallelism == 0 {
		if cfg.LowMemoryMode {
			cfg = LowMemoryConfig()
		} else {
			cfg = DefaultConfig()
		}
	}
	return &Hasher{params: cfg.ToParams()}
}

func (h *Hasher) Hash(password string) (string, error) {
	return HashWithParams(password, h.params)
}

func (h *Hasher) Verify(hash, password string) error {
	return Verify(hash, password)
}

func (h *Hasher) NeedsRehash(hash string) bool {
	return needsRehash(hash, h.params)
}
