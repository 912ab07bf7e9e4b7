package classify

// Category is one of the fixed, closed set of content topics. Values outside
// this set never enter the pipeline; every boundary validates with
// ParseCategory.
type Category string

const (
	CategoryDesignUX        Category = "design-ux"
	CategoryBranding        Category = "branding"
	CategoryAICreative      Category = "ai-creative"
	CategorySocialTrends    Category = "social-trends"
	CategoryGeneralTech     Category = "general-tech"
	CategoryStartupBusiness Category = "startup-business"
)

// CategoryOrder is the fixed evaluation order for the keyword tier. Ties in
// normalized score resolve to whichever category appears first here.
var CategoryOrder = []Category{
	CategoryDesignUX,
	CategoryBranding,
	CategoryAICreative,
	CategorySocialTrends,
	CategoryGeneralTech,
	CategoryStartupBusiness,
}

// ParseCategory reports whether s names a known taxonomy category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range CategoryOrder {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// defaultKeywords holds the keyword list per category used by the keyword
// tier. Lists are deliberately short: the normalization divides by
// 3 x list length, so padding a list dilutes every score in it.
var defaultKeywords = map[Category][]string{
	CategoryDesignUX: {
		"design", "ui", "ux", "figma", "interface", "typography",
	},
	CategoryBranding: {
		"brand", "branding", "logo", "identity", "rebrand", "packaging",
	},
	CategoryAICreative: {
		"ai", "generative", "midjourney", "prompt", "diffusion", "copilot",
	},
	CategorySocialTrends: {
		"tiktok", "instagram", "viral", "creator", "influencer", "youtube",
	},
	CategoryGeneralTech: {
		"tech", "software", "app", "gadget", "apple", "google", "chip",
	},
	CategoryStartupBusiness: {
		"startup", "funding", "venture", "acquisition", "revenue", "founder",
	},
}

// DefaultKeywords returns a copy of the built-in keyword lists.
func DefaultKeywords() map[Category][]string {
	out := make(map[Category][]string, len(defaultKeywords))
	for cat, list := range defaultKeywords {
		out[cat] = append([]string(nil), list...)
	}
	return out
}
