package tools

// FullURL joins baseURL and path with exactly one slash. An empty baseURL keeps path relative.
func FullURL(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	if baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	if path == "" {
		return baseURL
	}
	if path[0] == '/' {
		path = path[1:]
	}
	return baseURL + "/" + path
}
