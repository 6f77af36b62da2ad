package centers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// sidoNames maps the leading two digits of SIGUNGU_CD in the 2010 boundary
// file to province/metropolitan-city names, matching the survey dataset.
var sidoNames = map[string]string{
	"11": "서울특별시",
	"21": "부산광역시",
	"22": "대구광역시",
	"23": "인천광역시",
	"24": "광주광역시",
	"25": "대전광역시",
	"26": "울산광역시",
	"31": "경기도",
	"32": "강원도",
	"33": "충청북도",
	"34": "충청남도",
	"35": "전라북도",
	"36": "전라남도",
	"37": "경상북도",
	"38": "경상남도",
	"39": "제주특별자치도",
}

// renames is the 1-to-1 crosswalk from 2010 boundary names to current survey
// labels (gun-to-si promotions after 2010).
var renames = map[string]string{
	"충청남도/당진군": "충청남도/당진시",
	"경기도/여주군":  "경기도/여주시",
}

// cityGu splits compound names like 포항시남구 into 포항시/남구.
var cityGu = regexp.MustCompile(`^(.*?시)(.*구)$`)

// buildResidKeys fills ResidArea for every center in place, preserving slice
// order, and verifies the keys are unique. Names like 중구 exist in several
// cities, so uniqueness only holds with the sido prefix attached; a duplicate
// or an unmapped prefix is fatal.
func buildResidKeys(cs []Center) error {
	seen := make(map[string]string, len(cs)) // key -> first code

	for i := range cs {
		c := &cs[i]
		sido, ok := sidoNames[prefix2(c.Code)]
		if !ok {
			return eris.Errorf("centers: unmapped sido prefix %q for region %s %s", prefix2(c.Code), c.Code, c.Name)
		}

		key := sido + "/" + c.Name
		if m := cityGu.FindStringSubmatch(c.Name); m != nil {
			key = sido + "/" + m[1] + "/" + m[2]
		}
		if renamed, ok := renames[key]; ok {
			key = renamed
		}
		c.ResidArea = key

		if prev, dup := seen[key]; dup {
			return eris.Errorf("centers: resid_area key %q is not unique (codes %s, %s)", key, prev, c.Code)
		}
		seen[key] = c.Code
	}

	return nil
}

func prefix2(code string) string {
	if len(code) < 2 {
		return code
	}
	return code[:2]
}

// zfill left-pads a numeric code with zeros to width n.
func zfill(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) >= n {
		return s
	}
	return fmt.Sprintf("%0*s", n, s)
}

// stripSpace removes all whitespace from a name field.
func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
