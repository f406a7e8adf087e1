package domain

// GIF is a single Tenor search result. It is kept as the raw decoded JSON
// object so pages receive exactly what the upstream returned.
type GIF map[string]interface{}

// MediaURL returns the playable GIF URL (media_formats.gif.url), falling back
// to the result's url field.
func (g GIF) MediaURL() string {
	if formats, ok := g["media_formats"].(map[string]interface{}); ok {
		if gif, ok := formats["gif"].(map[string]interface{}); ok {
			if u, ok := gif["url"].(string); ok && u != "" {
				return u
			}
		}
	}
	u, _ := g["url"].(string)
	return u
}

// Description returns the content description, if any.
func (g GIF) Description() string {
	d, _ := g["content_description"].(string)
	return d
}

// ID returns the Tenor result id.
func (g GIF) ID() string {
	id, _ := g["id"].(string)
	return id
}
