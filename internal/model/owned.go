package model

// OwnedBy reports the owning user for resources gated on ownership.

func (v *Video) OwnedBy() uint    { return v.OwnerID }
func (c *Comment) OwnedBy() uint  { return c.OwnerID }
func (t *Tweet) OwnedBy() uint    { return t.OwnerID }
func (p *Playlist) OwnedBy() uint { return p.OwnerID }
