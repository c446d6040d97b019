package ranking

var roles = []string{
	"engineer", "developer", "manager", "director", "ceo", "founder",
	"co-founder", "vp", "president", "head", "lead", "senior", "junior",
	"intern", "student", "professor", "analyst", "consultant", "associate",
	"researcher", "scientist", "designer",
}

var skills = []string{
	"software", "web", "mobile", "ai", "ml", "data", "cloud", "devops",
	"frontend", "backend", "fullstack", "infrastructure", "security",
	"product", "project", "program", "ux", "ui", "design", "research",
	"python", "java", "javascript", "typescript", "react", "node", "aws",
	"azure", "gcp", "sql", "nosql", "mongodb", "database", "analytics",
	"machine", "learning", "deep", "neural", "networks", "nlp",
}

var industries = []string{
	"tech", "finance", "banking", "healthcare", "education", "retail",
	"media", "marketing", "consulting", "insurance", "government",
	"nonprofit", "startup", "enterprise", "fintech", "edtech", "biotech",
	"robotics", "automation", "manufacturing", "automotive", "aerospace",
}

// Two-word firms come first so a query naming one resolves to the pair.
var companies = []string{
	"goldman sachs", "morgan stanley", "jpmorgan chase",
	"google", "microsoft", "amazon", "apple", "facebook", "meta",
	"twitter", "linkedin", "airbnb", "uber", "shopify", "stripe",
	"netflix", "adobe", "salesforce", "ibm", "oracle", "sap",
	"goldman", "sachs", "morgan", "stanley", "jpmorgan", "chase",
	"deloitte", "accenture", "mckinsey", "bain", "bcg", "kpmg",
	"pwc", "ey", "tesla", "spacex", "nasa", "intel", "amd", "nvidia",
	"samsung", "huawei", "toyota", "bmw", "mercedes", "ford",
}

// companyGroups lists firms that count as related to each other.
var companyGroups = [][]string{
	{"goldman sachs", "morgan stanley", "jpmorgan chase", "goldman", "morgan", "jpmorgan", "sachs", "stanley", "chase"},
	{"google", "microsoft", "amazon", "apple", "facebook", "meta"},
}

var universities = []string{
	"university of waterloo", "waterloo", "uwaterloo", "toronto", "uoft",
	"mcmaster", "western", "queens", "mcgill", "ubc", "alberta", "calgary",
	"carleton", "ryerson", "tmu", "york", "concordia", "dalhousie",
	"mit", "stanford", "harvard", "princeton", "yale", "berkeley",
	"cambridge", "oxford", "imperial", "eth", "tsinghua", "peking",
}

var statusWords = []string{
	"seeking", "looking", "open", "available", "searching", "actively",
	"opportunities", "roles", "positions", "jobs", "internships", "co-op",
}

type synonymGroup struct {
	key      string
	synonyms []string
}

// Group order matters: a query token scores against the first group it
// belongs to.
var synonymGroups = []synonymGroup{
	{"job", []string{"position", "role", "opportunity", "opening", "career", "work", "employment"}},
	{"help", []string{"assist", "support", "aid", "guidance", "advice", "mentor", "connect", "introduction"}},
	{"find", []string{"locate", "discover", "identify", "search", "seek", "looking", "hunting"}},
	{"software", []string{"swe", "programming", "coding", "development", "tech", "application"}},
	{"finance", []string{"financial", "banking", "investment", "trading", "wealth", "capital", "fintech"}},
	{"marketing", []string{"brand", "growth", "advertising", "content", "social media", "digital"}},
	{"internship", []string{"intern", "co-op", "summer position", "temporary"}},
	{"startup", []string{"early-stage", "seed", "venture", "founder", "entrepreneur", "small company"}},
	{"enterprise", []string{"corporation", "large company", "established company", "big tech"}},
	{"ai", []string{"artificial intelligence", "machine learning", "ml", "deep learning", "neural networks"}},
	{"data", []string{"analytics", "big data", "database", "statistics", "insights", "bi", "business intelligence"}},
	{"product", []string{"pm", "product management", "product design", "product development"}},
	{"fulltime", []string{"full-time", "permanent", "career", "long-term"}},
	{"robotics", []string{"robot", "automation", "mechatronics", "mechanical engineering", "hardware", "electronics", "embedded systems"}},
	{"mechanical", []string{"mechanic", "mechanics", "mechanical engineer", "mechatronics", "hardware"}},
	{"engineering", []string{"engineer", "technology", "technical", "development", "design", "systems"}},
}

func init() {
	for _, list := range [][]string{roles, skills, industries, companies, universities, statusWords} {
		normalizeAll(list)
	}
	for _, g := range companyGroups {
		normalizeAll(g)
	}
	for i := range synonymGroups {
		synonymGroups[i].key = Normalize(synonymGroups[i].key)
		normalizeAll(synonymGroups[i].synonyms)
	}
}

// normalizeAll rewrites lexicon entries the way text is normalized, so
// "co-op" is looked up as "co op".
func normalizeAll(list []string) {
	for i, s := range list {
		list[i] = Normalize(s)
	}
}
