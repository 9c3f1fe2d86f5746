package chain

// MintABI is the part of the video NFT contract the service calls
const MintABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "to", "type": "address"},
			{"internalType": "string", "name": "tokenURI", "type": "string"}
		],
		"name": "mint",
		"outputs": [
			{"internalType": "uint256", "name": "", "type": "uint256"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Defaults for the demo deployment on Polygon Mumbai
const (
	DefaultContractAddress = "0xA4E1d8FE768d471B048F9d73ff90ED8fcCC03643"
	DefaultFunctionName    = "mint"
	DefaultExplorerURL     = "https://mumbai.polygonscan.com"
)
