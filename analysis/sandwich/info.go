package sandwich

// Classification grades a detector's impact and confidence.
type Classification int

const (
	High Classification = iota
	Medium
	Low
	Informational
	Optimization
)

func (c Classification) String() string {
	switch c {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	case Informational:
		return "Informational"
	case Optimization:
		return "Optimization"
	default:
		return "Unknown"
	}
}

const (
	Argument = "static-sandwich"
	Help     = "Detects slippage checks via structural inequality analysis"

	Impact     = High
	Confidence = High

	Wiki      = "https://github.com/lesc-ufv/static-sandwich-mev-detector"
	WikiTitle = "MEV Sandwich Opportunity Detector"
)

const WikiDescription = `**MEV Sandwich Opportunity Detector**

This detector identifies smart contract logic susceptible to MEV Sandwich by analyzing the data flow of trade execution. It flags structural patterns where a state-dependent value (Active Source), such as the return value of a swap or a post-execution balance update, is validated against a user-supplied parameter (User Input) using an inequality check.

In a MEV Sandwich, an adversary observes a victim's pending transaction with high slippage tolerance. The attacker exploits this by front-running the victim (buying the asset to inflate the price) and then back-running the execution (selling for a profit). This opportunity manifests in code when the mechanism to enforce the "minimum acceptable amount" is absent, optional, or structurally decoupled from the actual output of the external call.`

const WikiExploitScenario = `**Scenario: The MEV Sandwich**
A user initiates a transaction to swap 1000 USDC for ETH via a vulnerable router, setting a ` + "`minAmountOut`" + ` of 0 or a value significantly below the market rate (high slippage tolerance).

1.  **Front-run:** An MEV bot detects the pending transaction in the mempool. It pays a higher gas fee to execute a large buy order for ETH immediately *before* the user's transaction, artificially driving up the price of ETH in the liquidity pool.
2.  **Victim Execution:** The user's transaction executes at this inflated price. The router contract checks ` + "`amountReceived >= minAmountOut`" + `. Since ` + "`minAmountOut`" + ` is low, the check passes, but the user receives significantly less ETH than anticipated.
3.  **Back-run:** The bot immediately sells the ETH it bought in step 1. Because the victim's trade pushed the price even higher, the bot profits from the price difference, extracting value directly from the victim's trade execution.`

const WikiRecommendation = `**Remediation Guidelines:**

1.  **Mandatory Slippage Protection:** Ensure all swap functions accept and enforce a user-defined ` + "`amountOutMin`" + ` parameter. Avoid hardcoding slippage values or defaulting them to zero.
2.  **Verify Execution Outputs:** Validate the *actual* output of the swap against the minimum requirement. This must be done by checking the return value of the external call or by calculating the pre- and post-swap balance difference.
    ` + "```solidity" + `
    // Secure Pattern
    uint256 amountReceived = router.swap(...);
    require(amountReceived >= minAmountOut, "Slippage limit exceeded");
    ` + "```" + `
3.  **Transaction Deadlines:** Implement a timestamp deadline for transaction execution to prevent builders from withholding the transaction until market conditions become unfavorable.`
