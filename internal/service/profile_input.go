package service

import (
	"encoding/json"
	"net/url"
	"strings"
)

// SkillList accepts either a comma-separated string or a JSON array.
type SkillList []string

func (l *SkillList) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*l = SplitSkills(joined)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = SkillList(list).clean()
	return nil
}

// SplitSkills splits a comma-joined list into trimmed, non-empty tokens.
func SplitSkills(joined string) []string {
	return SkillList(strings.Split(joined, ",")).clean()
}

func (l SkillList) clean() []string {
	out := make([]string, 0, len(l))
	for _, s := range l {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type ProfileInput struct {
	Company        string    `json:"company"`
	Website        string    `json:"website"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	Skills         SkillList `json:"skills"`
	Bio            string    `json:"bio"`
	GithubUsername string    `json:"githubusername"`
	YouTube        string    `json:"youtube"`
	Twitter        string    `json:"twitter"`
	Facebook       string    `json:"facebook"`
	LinkedIn       string    `json:"linkedin"`
	Instagram      string    `json:"instagram"`
}

type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// NormalizeURL rewrites a user-supplied link into canonical https form:
// lowercase host without "www.", no default port, no utm_* parameters,
// sorted query and no trailing slash. Blank input stays blank.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case !strings.Contains(raw, "://"):
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = "https"
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host += ":" + port
	}
	u.Host = host

	if u.RawQuery != "" {
		query := u.Query()
		for k := range query {
			if strings.HasPrefix(strings.ToLower(k), "utm_") {
				query.Del(k)
			}
		}
		// Encode sorts by key
		u.RawQuery = query.Encode()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	return u.String()
}
