package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	CourseKeyTypeCourse  = "course-v1"
	CourseKeyTypeCCX     = "ccx-v1"
	CourseKeyTypeLibrary = "library-v1"

	// Legacy slash-separated ids ("Org/Course/Run") carry no type prefix.
	CourseKeyTypeLegacy = "legacy"
)

// CourseKey identifies one course run. It is comparable and safe to use as a
// map key. The zero value is not a valid key.
type CourseKey struct {
	keyType string
	org     string
	course  string
	run     string
	ccx     string
}

// ParseCourseKey accepts modern keys ("course-v1:Org+Course+Run",
// "ccx-v1:Org+Course+Run+ccx@N"), library keys ("library-v1:Org+Lib") and the
// deprecated slash format ("Org/Course/Run"). Anything else is an error.
func ParseCourseKey(s string) (CourseKey, error) {
	if prefix, rest, found := strings.Cut(s, ":"); found {
		switch prefix {
		case CourseKeyTypeCourse:
			org, course, run, err := splitRunParts(rest)
			if err != nil {
				return CourseKey{}, fmt.Errorf("invalid course key %q: %w", s, err)
			}
			return CourseKey{keyType: CourseKeyTypeCourse, org: org, course: course, run: run}, nil
		case CourseKeyTypeCCX:
			parts := strings.Split(rest, "+")
			if len(parts) != 4 || !strings.HasPrefix(parts[3], "ccx@") {
				return CourseKey{}, fmt.Errorf("invalid ccx key %q", s)
			}
			ccxID := strings.TrimPrefix(parts[3], "ccx@")
			if parts[0] == "" || parts[1] == "" || parts[2] == "" || ccxID == "" {
				return CourseKey{}, fmt.Errorf("invalid ccx key %q", s)
			}
			return CourseKey{keyType: CourseKeyTypeCCX, org: parts[0], course: parts[1], run: parts[2], ccx: ccxID}, nil
		case CourseKeyTypeLibrary:
			parts := strings.Split(rest, "+")
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return CourseKey{}, fmt.Errorf("invalid library key %q", s)
			}
			return CourseKey{keyType: CourseKeyTypeLibrary, org: parts[0], course: parts[1]}, nil
		default:
			return CourseKey{}, fmt.Errorf("unknown key type %q", prefix)
		}
	}

	// No type prefix: only the deprecated Org/Course/Run format is recognized.
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return CourseKey{}, fmt.Errorf("cannot parse course key %q", s)
	}
	return CourseKey{keyType: CourseKeyTypeLegacy, org: parts[0], course: parts[1], run: parts[2]}, nil
}

func splitRunParts(rest string) (org, course, run string, err error) {
	parts := strings.Split(rest, "+")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("expected Org+Course+Run, got %q", rest)
	}
	return parts[0], parts[1], parts[2], nil
}

func (k CourseKey) IsZero() bool     { return k.keyType == "" }
func (k CourseKey) Type() string     { return k.keyType }
func (k CourseKey) Org() string      { return k.org }
func (k CourseKey) IsLibrary() bool  { return k.keyType == CourseKeyTypeLibrary }
func (k CourseKey) Deprecated() bool { return k.keyType == CourseKeyTypeLegacy }

// SupportsOutlines reports whether outline operations accept this key: every
// non-deprecated course-like key does, libraries never do.
func (k CourseKey) SupportsOutlines() bool {
	if k.IsLibrary() {
		return false
	}
	return !k.Deprecated()
}

func (k CourseKey) String() string {
	switch k.keyType {
	case CourseKeyTypeCourse:
		return fmt.Sprintf("course-v1:%s+%s+%s", k.org, k.course, k.run)
	case CourseKeyTypeCCX:
		return fmt.Sprintf("ccx-v1:%s+%s+%s+ccx@%s", k.org, k.course, k.run, k.ccx)
	case CourseKeyTypeLibrary:
		return fmt.Sprintf("library-v1:%s+%s", k.org, k.course)
	case CourseKeyTypeLegacy:
		return fmt.Sprintf("%s/%s/%s", k.org, k.course, k.run)
	}
	return ""
}

func (k CourseKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *CourseKey) UnmarshalText(b []byte) error {
	parsed, err := ParseCourseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UsageKey identifies one content unit (a section or a learning sequence)
// inside a course run: "block-v1:Org+Course+Run+type@<type>+block@<id>".
type UsageKey struct {
	org       string
	course    string
	run       string
	blockType string
	blockID   string
}

func ParseUsageKey(s string) (UsageKey, error) {
	rest, found := strings.CutPrefix(s, "block-v1:")
	if !found {
		return UsageKey{}, fmt.Errorf("cannot parse usage key %q", s)
	}
	parts := strings.Split(rest, "+")
	if len(parts) != 5 || !strings.HasPrefix(parts[3], "type@") || !strings.HasPrefix(parts[4], "block@") {
		return UsageKey{}, fmt.Errorf("cannot parse usage key %q", s)
	}
	k := UsageKey{
		org:       parts[0],
		course:    parts[1],
		run:       parts[2],
		blockType: strings.TrimPrefix(parts[3], "type@"),
		blockID:   strings.TrimPrefix(parts[4], "block@"),
	}
	if k.org == "" || k.course == "" || k.run == "" || k.blockType == "" || k.blockID == "" {
		return UsageKey{}, fmt.Errorf("cannot parse usage key %q", s)
	}
	return k, nil
}

func (k UsageKey) IsZero() bool      { return k.blockID == "" }
func (k UsageKey) BlockType() string { return k.blockType }
func (k UsageKey) BlockID() string   { return k.blockID }

func (k UsageKey) String() string {
	return fmt.Sprintf("block-v1:%s+%s+%s+type@%s+block@%s", k.org, k.course, k.run, k.blockType, k.blockID)
}

func (k UsageKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *UsageKey) UnmarshalText(b []byte) error {
	parsed, err := ParseUsageKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UsageKeySet is how processors report removal and accessibility decisions.
type UsageKeySet map[UsageKey]struct{}

func NewUsageKeySet(keys ...UsageKey) UsageKeySet {
	s := make(UsageKeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s UsageKeySet) Contains(k UsageKey) bool {
	_, ok := s[k]
	return ok
}

func (s UsageKeySet) Add(k UsageKey) { s[k] = struct{}{} }

// Union merges other into s in place.
func (s UsageKeySet) Union(other UsageKeySet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Sorted returns the set's keys in canonical string order.
func (s UsageKeySet) Sorted() []UsageKey {
	keys := make([]UsageKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// The set serializes as a sorted array of key strings.
func (s UsageKeySet) MarshalJSON() ([]byte, error) {
	strs := make([]string, 0, len(s))
	for _, k := range s.Sorted() {
		strs = append(strs, k.String())
	}
	return json.Marshal(strs)
}

func (s *UsageKeySet) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return err
	}
	set := make(UsageKeySet, len(strs))
	for _, raw := range strs {
		k, err := ParseUsageKey(raw)
		if err != nil {
			return err
		}
		set[k] = struct{}{}
	}
	*s = set
	return nil
}
