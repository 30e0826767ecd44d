package dork

// aliasTemplates covers the platforms where a username leaves traces:
// social networks, developer platforms, content sites, public
// documents, and forums.
var aliasTemplates = []Template{
	{
		Category:    "Social Media",
		Objective:   "Twitter/X profile",
		Pattern:     `site:x.com "{target}"`,
		Description: "Finds the user's profile on X (formerly Twitter)",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Social Media",
		Objective:   "Twitter/X mentions",
		Pattern:     `site:x.com "{target}" OR "@{target}"`,
		Description: "Finds mentions of the alias in posts or conversations",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Social Media",
		Objective:   "Facebook profile",
		Pattern:     `site:facebook.com "{target}"`,
		Description: "Locates profiles or mentions on Facebook",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Social Media",
		Objective:   "Reddit activity",
		Pattern:     `site:reddit.com "{target}" OR "u/{target}"`,
		Description: "Finds the user or mentions on Reddit",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Social Media",
		Objective:   "Instagram profile",
		Pattern:     `site:instagram.com "{target}"`,
		Description: "Finds the associated Instagram profile",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Social Media",
		Objective:   "LinkedIn professional profile",
		Pattern:     `site:linkedin.com "{target}"`,
		Description: "Finds professional profiles on LinkedIn",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Development",
		Objective:   "GitHub repositories",
		Pattern:     `site:github.com "{target}"`,
		Description: "Finds repositories and development activity",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Development",
		Objective:   "Stack Overflow activity",
		Pattern:     `site:stackoverflow.com "{target}"`,
		Description: "Finds questions, answers, or a profile on Stack Overflow",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Development",
		Objective:   "GitLab projects",
		Pattern:     `site:gitlab.com "{target}"`,
		Description: "Finds projects or activity on GitLab",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Development",
		Objective:   "Hacker News profile",
		Pattern:     `site:news.ycombinator.com "{target}"`,
		Description: "Finds comments or mentions on Hacker News",
		Priority:    PriorityLow,
	},
	{
		Category:    "Content",
		Objective:   "Medium articles",
		Pattern:     `site:medium.com "{target}" OR "@{target}"`,
		Description: "Finds published articles or mentions on Medium",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Content",
		Objective:   "WordPress blogs",
		Pattern:     `site:wordpress.com "{target}"`,
		Description: "Finds blogs or mentions on WordPress.com",
		Priority:    PriorityLow,
	},
	{
		Category:    "Content",
		Objective:   "Substack newsletters",
		Pattern:     `site:substack.com "{target}"`,
		Description: "Finds newsletters or mentions on Substack",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Content",
		Objective:   "YouTube videos",
		Pattern:     `site:youtube.com "{target}"`,
		Description: "Finds channels or mentions on YouTube",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Documents",
		Objective:   "Public PDF documents",
		Pattern:     `filetype:pdf "{target}"`,
		Description: "Finds PDF documents mentioning the alias",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Documents",
		Objective:   "Public presentations",
		Pattern:     `(filetype:pptx OR filetype:ppt) "{target}"`,
		Description: "Finds presentations mentioning the user",
		Priority:    PriorityLow,
	},
	{
		Category:    "Documents",
		Objective:   "Word documents",
		Pattern:     `(filetype:docx OR filetype:doc) "{target}"`,
		Description: "Finds Word documents with mentions",
		Priority:    PriorityLow,
	},
	{
		Category:    "Communities",
		Objective:   "General forum activity",
		Pattern:     `"{target}" (site:forum.* OR site:community.* OR inurl:forum)`,
		Description: "Tracks activity in forums and online communities",
		Priority:    PriorityMedium,
	},
	{
		Category:    "Communities",
		Objective:   "Mentions outside major networks",
		Pattern:     `"{target}" -site:x.com -site:facebook.com -site:instagram.com -site:linkedin.com`,
		Description: "Finds mentions excluding the major social networks",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Communities",
		Objective:   "Discord activity (links)",
		Pattern:     `"discord.gg" "{target}" OR "discord.com" "{target}"`,
		Description: "Finds links or mentions related to Discord",
		Priority:    PriorityLow,
	},
	{
		Category:    "General",
		Objective:   "Broad search with variations",
		Pattern:     `"{target}" OR "@{target}" OR "{target_clean}"`,
		Description: "Broad search with multiple variations of the alias",
		Priority:    PriorityHigh,
	},
	{
		Category:    "General",
		Objective:   "Mentions in titles",
		Pattern:     `intitle:"{target}" OR intitle:"@{target}"`,
		Description: "Finds pages with the alias in the title",
		Priority:    PriorityMedium,
	},
	{
		Category:    "General",
		Objective:   "Mentions in URLs",
		Pattern:     `inurl:"{target}"`,
		Description: "Finds URLs containing the alias",
		Priority:    PriorityMedium,
	},
}

// domainTemplates probes a domain's exposed surface: indexed
// subdomains, authentication portals, and leaked documents.
var domainTemplates = []Template{
	{
		Category:    "Infrastructure",
		Objective:   "Subdomain discovery",
		Pattern:     `site:*.{domain} -site:www.{domain}`,
		Description: "Finds subdomains indexed by the search engine",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Infrastructure",
		Objective:   "Login portal identification",
		Pattern:     `site:{domain} (intitle:"Login" | inurl:"login" | inurl:"signin" | inurl:"auth")`,
		Description: "Locates authentication pages",
		Priority:    PriorityHigh,
	},
	{
		Category:    "Sensitive Information",
		Objective:   "Confidential documents",
		Pattern:     `site:{domain} (filetype:pdf | filetype:xlsx | filetype:docx) ("confidential" | "internal" | "private")`,
		Description: "Finds documents with sensitive information",
		Priority:    PriorityHigh,
	},
}

// AliasTemplates returns a copy of the alias template registry.
func AliasTemplates() []Template {
	out := make([]Template, len(aliasTemplates))
	copy(out, aliasTemplates)
	return out
}

// DomainTemplates returns a copy of the domain template registry.
func DomainTemplates() []Template {
	out := make([]Template, len(domainTemplates))
	copy(out, domainTemplates)
	return out
}
