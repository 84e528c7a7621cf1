package domain

// CryptoProjects project names looked up in messages to pick research knowledge.
var CryptoProjects = []string{
	"bitcoin", "ethereum", "solana", "cardano", "polkadot", "avalanche", "chainlink",
	"polygon", "uniswap", "aave", "compound", "maker", "sushi", "curve", "yearn",
	"arbitrum", "optimism", "base", "bnb", "xrp", "dogecoin", "shiba inu", "litecoin",
	"cosmos", "near", "fantom", "tron", "filecoin", "the graph", "1inch", "pancakeswap",
	"gmx", "gains", "pendle", "aerodrome", "velodrome", "balancer",
}

// InvestmentKeywords terms used to retrieve keyword-tagged knowledge.
var InvestmentKeywords = []string{
	"invest", "risk", "return", "strategy", "portfolio", "diversify", "allocation",
	"market", "bull", "bear", "trend", "analysis", "technical", "fundamental", "defi",
	"yield", "farming", "staking", "liquidity", "pool", "swap", "trade", "long", "short",
	"leverage", "margin", "volatility", "market cap", "volume", "tokenomics", "supply",
	"inflation", "team", "roadmap", "whitepaper",
}
